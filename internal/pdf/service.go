package pdf

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/spf13/afero"

	"github.com/a3tai/pdf2xfa2/internal/config"
	pdferrors "github.com/a3tai/pdf2xfa2/internal/pdf/errors"
	"github.com/a3tai/pdf2xfa2/internal/pdf/xfa"
	"github.com/a3tai/pdf2xfa2/internal/pdf/xmlout"
)

// OutputFileMode is the permission of written XFA files
const OutputFileMode = 0o644

// Service converts the XFA resource of PDF forms into XML files by
// orchestrating validation, extraction and serialization
type Service struct {
	fs        afero.Fs
	validator *Validator
	extractor *xfa.Extractor
	writer    *xmlout.Writer
	packet    string
	verbose   bool
}

// NewService creates a new PDF service operating on fs
func NewService(fs afero.Fs, cfg *config.Config) (*Service, error) {
	if fs == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Service{
		fs:        fs,
		validator: NewValidator(fs, cfg.MaxFileSize, cfg.Password),
		extractor: xfa.NewExtractor(xfa.WithDebug(cfg.IsDebug()), xfa.WithPassword(cfg.Password)),
		writer:    xmlout.NewWriter(cfg.Indent),
		packet:    cfg.Packet,
		verbose:   cfg.IsVerbose(),
	}, nil
}

// ExtractXFA writes the XFA resource of req.Source to req.Destination.
// Nothing is written unless the whole document could be extracted and parsed.
func (s *Service) ExtractXFA(req ExtractXFARequest) (*ExtractXFAResult, error) {
	if req.Destination == "" {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeOutput, "destination path cannot be empty")
	}

	pkg, err := s.readPackage(req.Source)
	if err != nil {
		return nil, err
	}

	packet := req.Packet
	if packet == "" {
		packet = s.packet
	}

	data, names, perr := selectPacket(pkg, packet)
	if perr != nil {
		return nil, perr.WithFile(req.Source)
	}

	doc, err := s.writer.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read XFA from %s: %w", req.Source, err)
	}

	n, err := s.writeFile(req.Destination, doc)
	if err != nil {
		return nil, err
	}

	if s.verbose {
		log.Printf("Wrote %d bytes of XFA (%v) from %s to %s", n, names, req.Source, req.Destination)
	}

	return &ExtractXFAResult{
		Source:       req.Source,
		Destination:  req.Destination,
		Packets:      names,
		BytesWritten: n,
	}, nil
}

// InspectXFA reports the form structure of a document without writing anything
func (s *Service) InspectXFA(req InspectXFARequest) (*InspectXFAResult, error) {
	source, err := s.validator.ValidateSource(req.Path)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(req.Path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLoad, "failed to open source", err).WithFile(req.Path)
	}
	defer f.Close()

	info, err := s.extractor.Inspect(f)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", req.Path, err)
	}

	result := &InspectXFAResult{
		Path:        req.Path,
		Size:        source.Size,
		Pages:       info.PageCount,
		HasAcroForm: info.HasAcroForm,
		HasXFA:      info.HasXFA,
	}
	if result.Pages == 0 {
		result.Pages = source.Pages
	}
	if info.Package != nil {
		for _, p := range info.Package.Packets {
			result.Packets = append(result.Packets, PacketInfo{Name: p.Name, Size: len(p.Data)})
		}
	}

	return result, nil
}

// PDFValidateFile performs validation on a PDF file. A file passing the
// pre-flight checks must also load as a document to be valid.
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result, err := s.validator.ValidateFile(req)
	if err != nil || !result.Valid {
		return result, err
	}

	f, err := s.fs.Open(req.Path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLoad, "failed to open source", err).WithFile(req.Path)
	}
	defer f.Close()

	if err := s.extractor.Verify(f); err != nil {
		result.Valid = false
		result.Message = err.Error()
	}

	return result, nil
}

// readPackage validates and opens the source and extracts its XFA package.
// The source file is closed on return.
func (s *Service) readPackage(path string) (*xfa.Package, error) {
	if _, err := s.validator.ValidateSource(path); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLoad, "failed to open source", err).WithFile(path)
	}
	defer f.Close()

	pkg, err := s.extractor.Extract(f)
	if err != nil {
		return nil, fmt.Errorf("failed to extract XFA from %s: %w", path, err)
	}

	return pkg, nil
}

// selectPacket returns the bytes to serialize and the packets they came from
func selectPacket(pkg *xfa.Package, name string) ([]byte, []string, *pdferrors.PDFError) {
	if name == "" {
		return pkg.Bytes(), pkg.Names(), nil
	}

	packet, ok := pkg.Packet(name)
	if !ok {
		return nil, nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeNoXFA,
			fmt.Sprintf("no XFA packet %q found in source document", name),
			fmt.Sprintf("available: %v", pkg.Names()))
	}

	return packet.Data, []string{packet.Name}, nil
}

// writeFile serializes doc into a temporary file beside path and renames it
// into place, so a failed write never leaves a partial destination.
func (s *Service) writeFile(path string, doc *etree.Document) (n int64, err error) {
	tmp, err := afero.TempFile(s.fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, pdferrors.WrapError(pdferrors.ErrorTypeOutput, "failed to create output file", err).WithFile(path)
	}

	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = tmp.Close()
		}
		_ = s.fs.Remove(tmp.Name())
	}()

	n, err = s.writer.Write(tmp, doc)
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}

	closed = true
	if err = tmp.Close(); err != nil {
		return n, pdferrors.WrapError(pdferrors.ErrorTypeOutput, "failed to close output file", err).WithFile(path)
	}

	if err = s.fs.Chmod(tmp.Name(), OutputFileMode); err != nil {
		return n, pdferrors.WrapError(pdferrors.ErrorTypeOutput, "failed to set output file mode", err).WithFile(path)
	}

	if err = s.fs.Rename(tmp.Name(), path); err != nil {
		return n, pdferrors.WrapError(pdferrors.ErrorTypeOutput, "failed to move output file into place", err).WithFile(path)
	}

	return n, nil
}
