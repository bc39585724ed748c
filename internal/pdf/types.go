package pdf

// SourceInfo describes a source file that passed validation
type SourceInfo struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Pages int    `json:"pages"`
}

// PacketInfo describes one packet of an XFA package
type PacketInfo struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Request Types

// ExtractXFARequest represents a request to write a document's XFA to a file
type ExtractXFARequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	// Packet selects a single packet such as "datasets"; empty means the whole package
	Packet string `json:"packet,omitempty"`
}

// InspectXFARequest represents a request to describe a document's form structure
type InspectXFARequest struct {
	Path string `json:"path"`
}

// PDFValidateFileRequest represents a request to validate a source PDF
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// Response Types

// ExtractXFAResult represents the result of an XFA extraction
type ExtractXFAResult struct {
	Source       string   `json:"source"`
	Destination  string   `json:"destination"`
	Packets      []string `json:"packets"`
	BytesWritten int64    `json:"bytes_written"`
}

// InspectXFAResult represents the form structure of a document
type InspectXFAResult struct {
	Path        string       `json:"path"`
	Size        int64        `json:"size"`
	Pages       int          `json:"pages"`
	HasAcroForm bool         `json:"has_acro_form"`
	HasXFA      bool         `json:"has_xfa"`
	Packets     []PacketInfo `json:"packets,omitempty"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}
