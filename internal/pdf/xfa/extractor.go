package xfa

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/pdf2xfa2/internal/pdf/errors"
)

// disableConfigDir keeps pdfcpu from creating config.yml under the user's
// config directory.
var disableConfigDir sync.Once

// Extractor reads the XFA resource of a PDF using pdfcpu
type Extractor struct {
	debugMode bool
	userPW    string
	ownerPW   string
}

// Option configures an Extractor
type Option func(*Extractor)

// WithDebug enables debug logging of the lookup chain
func WithDebug(debug bool) Option {
	return func(e *Extractor) {
		e.debugMode = debug
	}
}

// WithPassword sets the user and owner password used for encrypted documents
func WithPassword(password string) Option {
	return func(e *Extractor) {
		e.userPW = password
		e.ownerPW = password
	}
}

// NewExtractor creates a new XFA extractor
func NewExtractor(opts ...Option) *Extractor {
	disableConfigDir.Do(api.DisableConfigDir)

	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Info describes the form structure of a document without failing on absent parts
type Info struct {
	PageCount   int      `json:"page_count"`
	HasAcroForm bool     `json:"has_acro_form"`
	HasXFA      bool     `json:"has_xfa"`
	Package     *Package `json:"package,omitempty"`
}

// Extract reads the document from rs and returns its decoded XFA package
func (e *Extractor) Extract(rs io.ReadSeeker) (*Package, error) {
	ctx, err := e.readContext(rs)
	if err != nil {
		return nil, err
	}

	acroForm, err := e.acroForm(ctx)
	if err != nil {
		return nil, err
	}
	if acroForm == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoAcroForm, "no AcroForm found in source document")
	}

	pkg, err := e.readPackage(ctx, acroForm)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoXFA, "no XFA form found in source document")
	}

	return pkg, nil
}

// Verify reports whether the document loads, whatever its form structure
func (e *Extractor) Verify(rs io.ReadSeeker) error {
	_, err := e.readContext(rs)
	return err
}

// Inspect reads the document from rs and reports which form parts are present
func (e *Extractor) Inspect(rs io.ReadSeeker) (*Info, error) {
	ctx, err := e.readContext(rs)
	if err != nil {
		return nil, err
	}

	info := &Info{PageCount: ctx.PageCount}

	acroForm, err := e.acroForm(ctx)
	if err != nil {
		return nil, err
	}
	if acroForm == nil {
		return info, nil
	}
	info.HasAcroForm = true

	pkg, err := e.readPackage(ctx, acroForm)
	if err != nil {
		return nil, err
	}
	if pkg != nil {
		info.HasXFA = true
		info.Package = pkg
	}

	return info, nil
}

// readContext loads the PDF into a pdfcpu context
func (e *Extractor) readContext(rs io.ReadSeeker) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = e.userPW
	conf.OwnerPW = e.ownerPW

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLoad, "failed to read PDF context", err)
	}

	// The page tree is not needed for extraction; a broken one only loses the count.
	if err := ctx.EnsurePageCount(); err != nil && e.debugMode {
		log.Printf("Ignoring page count failure: %v", err)
	}

	return ctx, nil
}

// acroForm returns the AcroForm dictionary, or nil when the catalog has none
func (e *Extractor) acroForm(ctx *model.Context) (types.Dict, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLoad, "failed to get catalog", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		if e.debugMode {
			log.Println("No AcroForm dictionary found in catalog")
		}
		return nil, nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeNoAcroForm, "failed to dereference AcroForm", err)
	}

	return acroFormDict, nil
}

// readPackage decodes the /XFA entry, or returns nil when it is absent or empty.
// The entry is either one stream or an array of alternating packet names and streams.
func (e *Extractor) readPackage(ctx *model.Context, acroForm types.Dict) (*Package, error) {
	xfaObj, found := acroForm.Find("XFA")
	if !found {
		if e.debugMode {
			log.Println("No XFA entry found in AcroForm")
		}
		return nil, nil
	}

	obj, err := ctx.Dereference(xfaObj)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidXFA, "failed to dereference XFA entry", err)
	}

	pkg := &Package{PageCount: ctx.PageCount}

	switch o := obj.(type) {
	case nil:
		return nil, nil
	case types.StreamDict:
		data, err := decodeStream(o)
		if err != nil {
			return nil, err
		}
		pkg.Packets = append(pkg.Packets, Packet{Name: WholeDocumentPacket, Data: data})
	case types.Array:
		packets, err := e.readPacketArray(ctx, o)
		if err != nil {
			return nil, err
		}
		pkg.Packets = packets
	default:
		return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidXFA,
			"invalid XFA entry", fmt.Sprintf("unexpected %T", obj))
	}

	if pkg.Size() == 0 {
		if e.debugMode {
			log.Println("XFA entry is empty")
		}
		return nil, nil
	}

	if e.debugMode {
		log.Printf("Found XFA package with packets %v (%d bytes)", pkg.Names(), pkg.Size())
	}

	return pkg, nil
}

// readPacketArray decodes an [name stream name stream ...] array
func (e *Extractor) readPacketArray(ctx *model.Context, arr types.Array) ([]Packet, error) {
	if len(arr)%2 != 0 {
		return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidXFA,
			"invalid XFA packet array", fmt.Sprintf("odd length %d", len(arr)))
	}

	packets := make([]Packet, 0, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		name, err := ctx.DereferenceStringOrHexLiteral(arr[i], model.V10, nil)
		if err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidXFA,
				fmt.Sprintf("invalid name for XFA packet %d", i/2), err)
		}

		obj, err := ctx.Dereference(arr[i+1])
		if err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidXFA,
				fmt.Sprintf("failed to dereference XFA packet %q", name), err)
		}

		sd, ok := obj.(types.StreamDict)
		if !ok {
			return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidXFA,
				fmt.Sprintf("XFA packet %q is not a stream", name), fmt.Sprintf("unexpected %T", obj))
		}

		data, err := decodeStream(sd)
		if err != nil {
			return nil, err
		}

		packets = append(packets, Packet{Name: name, Data: data})
	}

	return packets, nil
}

// decodeStream applies the stream's filter pipeline
func decodeStream(sd types.StreamDict) ([]byte, error) {
	if err := sd.Decode(); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidXFA, "failed to decode XFA stream", err)
	}
	return sd.Content, nil
}
