// batchctl exercises a deployed batch endpoint end to end: it requests
// transfer links and moves object bytes through them.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/vela-games/lfsgate/client"
	"github.com/vela-games/lfsgate/lfs"
)

var oidPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func main() {
	app := &cli.App{
		Name:  "batchctl",
		Usage: "request LFS transfer links and move objects through them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "endpoint",
				Usage:    "LFS server URL; /objects/batch is appended",
				EnvVars:  []string{"BATCHCTL_ENDPOINT"},
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "timeout of each HTTP request",
				Value: 5 * time.Minute,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "upload files, addressed by their sha256",
				ArgsUsage: "FILE...",
				Action:    runUpload,
			},
			{
				Name:      "download",
				Usage:     "download objects into a directory",
				ArgsUsage: "OID:SIZE...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "output directory", Value: "."},
				},
				Action: runDownload,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("endpoint"), &http.Client{Timeout: c.Duration("timeout")})
}

func runUpload(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no files given")
	}

	paths := map[string]string{}
	objects := make([]lfs.Pointer, 0, c.NArg())

	for _, path := range c.Args().Slice() {
		pointer, err := pointerForFile(path)
		if err != nil {
			return err
		}
		paths[pointer.Oid] = path
		objects = append(objects, pointer)
	}

	lfsClient := newClient(c)

	resp, err := lfsClient.Batch(c.Context, &lfs.BatchRequest{
		Operation: "upload",
		Transfers: []string{lfs.TransferBasic},
		Objects:   objects,
		HashAlgo:  "sha256",
	})
	if err != nil {
		return err
	}

	for _, obj := range resp.Objects {
		if err := uploadFile(c, lfsClient, obj, paths[obj.Oid]); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "uploaded %s %s\n", obj.Oid, paths[obj.Oid])
	}

	return nil
}

func uploadFile(c *cli.Context, lfsClient *client.Client, obj *lfs.ObjectResponse, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return lfsClient.Upload(c.Context, obj, f)
}

func pointerForFile(path string) (lfs.Pointer, error) {
	f, err := os.Open(path)
	if err != nil {
		return lfs.Pointer{}, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return lfs.Pointer{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	return lfs.Pointer{Oid: hex.EncodeToString(h.Sum(nil)), Size: size}, nil
}

func parsePointer(arg string) (lfs.Pointer, error) {
	oid, sizeStr, ok := strings.Cut(arg, ":")
	if !ok || oid == "" {
		return lfs.Pointer{}, fmt.Errorf("expected OID:SIZE, got %q", arg)
	}
	if !oidPattern.MatchString(oid) {
		return lfs.Pointer{}, fmt.Errorf("oid in %q is not a sha256 hex digest", arg)
	}

	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil || size < 0 {
		return lfs.Pointer{}, fmt.Errorf("invalid size in %q", arg)
	}

	return lfs.Pointer{Oid: oid, Size: size}, nil
}

func runDownload(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no objects given")
	}

	requested := map[string]bool{}
	objects := make([]lfs.Pointer, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		pointer, err := parsePointer(arg)
		if err != nil {
			return err
		}
		requested[pointer.Oid] = true
		objects = append(objects, pointer)
	}

	lfsClient := newClient(c)

	resp, err := lfsClient.Batch(c.Context, &lfs.BatchRequest{
		Operation: "download",
		Transfers: []string{lfs.TransferBasic},
		Objects:   objects,
		HashAlgo:  "sha256",
	})
	if err != nil {
		return err
	}

	for _, obj := range resp.Objects {
		dest, err := outputPath(c.String("out"), obj.Oid, requested)
		if err != nil {
			return err
		}
		if err := downloadFile(c, lfsClient, obj, dest); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "downloaded %s\n", dest)
	}

	return nil
}

// outputPath places oid under dir. The oid comes from the server, so it must be
// one we asked for and must not name anything outside dir.
func outputPath(dir, oid string, requested map[string]bool) (string, error) {
	if !requested[oid] {
		return "", fmt.Errorf("server returned unrequested object %q", oid)
	}
	if !oidPattern.MatchString(oid) || filepath.Base(oid) != oid {
		return "", fmt.Errorf("refusing to write object %q: not a sha256 hex digest", oid)
	}

	return filepath.Join(dir, oid), nil
}

func downloadFile(c *cli.Context, lfsClient *client.Client, obj *lfs.ObjectResponse, dest string) error {
	body, err := lfsClient.Download(c.Context, obj)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
