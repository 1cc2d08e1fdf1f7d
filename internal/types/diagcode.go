package types

// Issue codes emitted by the lexer, document model and markup parser.
// Centralizing these prevents silent breakage from typos in string literals.

// Lexer issue codes.
const (
	DiagHeaderUnterminated  = "header-unterminated"
	DiagHeaderTrailingText  = "header-trailing-text"
	DiagHeaderEmpty         = "header-empty"
	DiagMalformedLine       = "malformed-line"
	DiagAttachmentData      = "attachment-data-orphan"
	DiagFieldOverflow       = "field-overflow"
	DiagFieldMissing        = "field-missing"
	DiagFormatMissing       = "format-missing-default-used"
	DiagFormatDuplicate     = "format-duplicate-field"
	DiagFormatUnknownField  = "format-unknown-field"
	DiagFormatRedeclared    = "format-redeclared"
	DiagFormatMissingField  = "format-missing-field"
	DiagSectionDuplicate    = "section-duplicate"
	DiagScriptInfoMissing   = "script-info-missing"
	DiagScriptInfoDuplicate = "script-info-duplicate-key"
)

// Semantic issue codes.
const (
	DiagValueInvalid          = "value-invalid"
	DiagEventNegativeDuration = "event-negative-duration"
	DiagStyleUndefined        = "style-undefined"
	DiagScriptTypeUnknown     = "script-type-unknown"
)

// Extension issue codes.
const (
	DiagExtensionUnregistered = "extension-unregistered"
	DiagExtensionInvalid      = "extension-invalid"
	DiagExtensionFailed       = "extension-process-failed"
)

// Markup issue codes.
const (
	DiagBlockUnterminated = "block-unterminated"
	DiagBlockStrayClose   = "block-stray-close"
	DiagTagUnknown        = "tag-unknown"
	DiagTagArgInvalid     = "tag-arg-invalid"
	DiagTagArity          = "tag-arity"
	DiagTagEmpty          = "tag-empty"
	DiagTagParenUnclosed  = "tag-paren-unclosed"
)

// AllDiagnosticCodes returns all known issue codes grouped by phase.
func AllDiagnosticCodes() []DiagCodeInfo {
	return []DiagCodeInfo{
		// Lexer / document model
		{Code: DiagHeaderUnterminated, Phase: "lexer"},
		{Code: DiagHeaderTrailingText, Phase: "lexer"},
		{Code: DiagHeaderEmpty, Phase: "lexer"},
		{Code: DiagMalformedLine, Phase: "lexer"},
		{Code: DiagAttachmentData, Phase: "lexer"},
		{Code: DiagFieldOverflow, Phase: "document"},
		{Code: DiagFieldMissing, Phase: "document"},
		{Code: DiagFormatMissing, Phase: "document"},
		{Code: DiagFormatDuplicate, Phase: "document"},
		{Code: DiagFormatUnknownField, Phase: "document"},
		{Code: DiagFormatRedeclared, Phase: "document"},
		{Code: DiagFormatMissingField, Phase: "document"},
		{Code: DiagSectionDuplicate, Phase: "document"},
		{Code: DiagScriptInfoMissing, Phase: "document"},
		{Code: DiagScriptInfoDuplicate, Phase: "document"},
		// Semantic
		{Code: DiagValueInvalid, Phase: "semantic"},
		{Code: DiagEventNegativeDuration, Phase: "semantic"},
		{Code: DiagStyleUndefined, Phase: "semantic"},
		{Code: DiagScriptTypeUnknown, Phase: "semantic"},
		// Extension
		{Code: DiagExtensionUnregistered, Phase: "extension"},
		{Code: DiagExtensionInvalid, Phase: "extension"},
		{Code: DiagExtensionFailed, Phase: "extension"},
		// Markup
		{Code: DiagBlockUnterminated, Phase: "markup"},
		{Code: DiagBlockStrayClose, Phase: "markup"},
		{Code: DiagTagUnknown, Phase: "markup"},
		{Code: DiagTagArgInvalid, Phase: "markup"},
		{Code: DiagTagArity, Phase: "markup"},
		{Code: DiagTagEmpty, Phase: "markup"},
		{Code: DiagTagParenUnclosed, Phase: "markup"},
	}
}

// DiagCodeInfo describes an issue code and the phase that emits it.
type DiagCodeInfo struct {
	Code  string
	Phase string
}
