package exc

const (
	CodeUnknownFatal                  = "I0000"
	CodeFileNotFound                  = "I0001"
	CodeUnsuportedFileSystemOperation = "I0002"
	CodePermissionDenied              = "I0003"
	CodeUnsupportedFileFormat         = "I0004"
	CodeUnexpectedEOF                 = "I0005"
	CodeIllegalToken                  = "I0006"
	CodeInvalidNumber                 = "I0007"
	CodeUnknownType                   = "I0008"
	CodeConfig                        = "I0009"
	CodePlugin                        = "I0010"
	CodeUnresolvedInclude             = "I0011"
	CodeUnresolvedType                = "I0012"
	CodeProtobufParseError            = "I0013"
)

const (
	CodeEOF = "_EOF_"
)

var (
	// Unresolved includes and identifier types are reported but do not stop
	// generation; the emitter falls back to an untyped reference.
	defaultNonFatal = map[string]bool{
		CodeUnresolvedInclude: true,
		CodeUnresolvedType:    true,
	}
)

// SourceURI is the URI used for inline source text.
const SourceURI = "source"
