package lfs

// Operation is the closed set of batch operations the protocol defines.
type Operation int

const (
	OperationUnknown Operation = iota
	OperationUpload
	OperationDownload
	OperationVerify
)

// ParseOperation maps the wire value to an Operation; anything unrecognised is OperationUnknown.
func ParseOperation(s string) Operation {
	switch s {
	case "upload":
		return OperationUpload
	case "download":
		return OperationDownload
	case "verify":
		return OperationVerify
	}

	return OperationUnknown
}

func (o Operation) String() string {
	switch o {
	case OperationUpload:
		return "upload"
	case OperationDownload:
		return "download"
	case OperationVerify:
		return "verify"
	}

	return "unknown"
}
