package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/afero"

	pdferrors "github.com/a3tai/pdf2xfa2/internal/pdf/errors"
)

// Validator checks that a source file is a readable PDF before conversion
type Validator struct {
	fs          afero.Fs
	maxFileSize int64
	password    string
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(fs afero.Fs, maxFileSize int64, password string) *Validator {
	return &Validator{
		fs:          fs,
		maxFileSize: maxFileSize,
		password:    password,
	}
}

// ValidateFile reports whether a file is a readable PDF. Validation failures
// are part of the result, not an error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	if _, err := v.ValidateSource(req.Path); err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	return result, nil
}

// ValidateSource performs the pre-flight checks for a conversion source
func (v *Validator) ValidateSource(filePath string) (*SourceInfo, error) {
	if filePath == "" {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeLoad, "source path cannot be empty")
	}

	fileInfo, err := v.fs.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeLoad, "source file does not exist").WithFile(filePath)
	}
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLoad, "cannot access source file", err).WithFile(filePath)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return nil, err
	}

	if err := v.checkHeader(filePath); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLoad, "invalid PDF file", err).WithFile(filePath)
	}

	// ledongthuc/pdf only supplies the page count. It cannot open every
	// encryption scheme pdfcpu reads, so the document loader has the last word.
	pages, err := v.openPDF(filePath, fileInfo.Size())
	if err != nil {
		pages = 0
	}

	return &SourceInfo{
		Path:  filePath,
		Size:  fileInfo.Size(),
		Pages: pages,
	}, nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeLoad, "source path is a directory, not a file").WithFile(filePath)
	}

	if fileInfo.Size() == 0 {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeLoad, "source file is empty").WithFile(filePath)
	}

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeLoad, "source file too large",
			fmt.Sprintf("%d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)).WithFile(filePath)
	}

	return nil
}

// headerWindow is how far into the file the %PDF- marker may start
const headerWindow = 1024

var pdfHeader = []byte("%PDF-")

// checkHeader requires the %PDF- marker near the start of the file
func (v *Validator) checkHeader(filePath string) error {
	f, err := v.fs.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, headerWindow)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if !bytes.Contains(buf[:n], pdfHeader) {
		return errors.New("missing %PDF- header")
	}
	return nil
}

// openPDF opens the file with ledongthuc/pdf and returns its page count
func (v *Validator) openPDF(filePath string, size int64) (pages int, err error) {
	f, err := v.fs.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	// The reader panics on some malformed trailers.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	tried := false
	reader, err := pdf.NewReaderEncrypted(f, size, func() string {
		if tried {
			return ""
		}
		tried = true
		return v.password
	})
	if err != nil {
		return 0, err
	}

	return reader.NumPage(), nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.ValidateSource(filePath)
	return err == nil
}
