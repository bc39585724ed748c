package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	XFAExtractDescription = `Extract the XFA (XML Forms Architecture) form embedded in a PDF and write it as an indented UTF-8 XML file.

**When to use:** A PDF form was produced by a dynamic-forms designer and its fields, layout and data live in an XFA resource rather than in plain AcroForm fields.

**Why it's useful:** The embedded XML is re-serialized unchanged apart from indentation and the XML declaration, so it can be diffed, searched or fed to other XML tooling.

**Examples:**
• Dump a complete form: "Extract the XFA of tax-return.pdf" writes tax-return.xfa next to it
• Choose the destination: path "claim", output "claim-form.xml"
• Only the filled-in data: path "claim.pdf", packet "datasets"

**Paths:** .pdf is appended to a path without an extension. Without output the destination is the PDF path with a .xfa extension; an output without an extension also gets .xfa.

**Best practices:** Run xfa_inspect first to see which packets a form carries.`

	XFAInspectDescription = `Describe the form structure of a PDF without writing anything.

**When to use:** Before extracting, to learn whether a document has an AcroForm, whether the AcroForm carries XFA, and which XFA packets exist.

**Reports:** file size, page count, AcroForm and XFA presence, and each packet name (template, datasets, config, ...) with its size in bytes.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before extracting from an unknown file, especially user uploads.

**Checks:** the file exists, is a regular non-empty file within the size limit, starts with a PDF header, and loads as a PDF document.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"xfa_extract":       XFAExtractDescription,
	"xfa_inspect":       XFAInspectDescription,
	"pdf_validate_file": PDFValidateFileDescription,
}

// GetToolDescription returns the description for a given tool name
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted names of all described tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
