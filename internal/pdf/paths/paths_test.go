package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name            string
		args            []string
		wantSource      string
		wantDestination string
	}{
		{
			name:            "source without extension",
			args:            []string{"form"},
			wantSource:      "form.pdf",
			wantDestination: "form.xfa",
		},
		{
			name:            "source with extension",
			args:            []string{"form.pdf"},
			wantSource:      "form.pdf",
			wantDestination: "form.xfa",
		},
		{
			name:            "destination without extension",
			args:            []string{"form.pdf", "out"},
			wantSource:      "form.pdf",
			wantDestination: "out.xfa",
		},
		{
			name:            "destination extension preserved",
			args:            []string{"form.pdf", "out.xml"},
			wantSource:      "form.pdf",
			wantDestination: "out.xml",
		},
		{
			name:            "source default applies with explicit destination",
			args:            []string{"form", "out.xml"},
			wantSource:      "form.pdf",
			wantDestination: "out.xml",
		},
		{
			// ".2024" is left as the extension, so no ".xfa" is appended
			name:            "multiple dots strip only the last extension",
			args:            []string{"tax.2024.pdf"},
			wantSource:      "tax.2024.pdf",
			wantDestination: "tax.2024",
		},
		{
			name:            "non pdf source extension is kept",
			args:            []string{"scan.bin"},
			wantSource:      "scan.bin",
			wantDestination: "scan.xfa",
		},
		{
			name:            "relative path with leading dot",
			args:            []string{"./form"},
			wantSource:      "./form.pdf",
			wantDestination: "./form.xfa",
		},
		{
			name:            "dotted directory is not an extension",
			args:            []string{"forms.d/w2"},
			wantSource:      "forms.d/w2.pdf",
			wantDestination: "forms.d/w2.xfa",
		},
		{
			name:            "dot only name",
			args:            []string{".pdf"},
			wantSource:      ".pdf",
			wantDestination: ".xfa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := Resolve(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, pair.Source)
			assert.Equal(t, tt.wantDestination, pair.Destination)
		})
	}
}

func TestResolve_UsageError(t *testing.T) {
	for _, args := range [][]string{nil, {}, {"a.pdf", "b.xfa", "c"}} {
		_, err := Resolve(args)
		assert.ErrorIs(t, err, ErrUsage, "args: %v", args)
	}
}

func TestExtensionHelpers(t *testing.T) {
	tests := []struct {
		path    string
		ext     string
		trimmed string
	}{
		{path: "form", ext: "", trimmed: "form"},
		{path: "form.pdf", ext: ".pdf", trimmed: "form"},
		{path: "a.b.c", ext: ".c", trimmed: "a.b"},
		{path: "form.", ext: ".", trimmed: "form"},
		{path: ".pdf", ext: ".pdf", trimmed: ""},
		{path: "dir.d/form", ext: "", trimmed: "dir.d/form"},
		{path: `dir.d\form.pdf`, ext: ".pdf", trimmed: `dir.d\form`},
		{path: "", ext: "", trimmed: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ext, Ext(tt.path))
			assert.Equal(t, tt.ext != "", HasExt(tt.path))
			assert.Equal(t, tt.trimmed, TrimExt(tt.path))
		})
	}
}

func TestWithDefaultExt(t *testing.T) {
	assert.Equal(t, "form.pdf", WithDefaultExt("form", ".pdf"))
	assert.Equal(t, "form.xml", WithDefaultExt("form.xml", ".pdf"))
	assert.Equal(t, "form.", WithDefaultExt("form.", ".pdf"))
}
