package native

// OptType is an option code for Engine.SetOpt.
type OptType int32

// Option codes.
const (
	OptTokenHandler    OptType = 0
	OptErrorHandler    OptType = 1
	OptContentModel    OptType = 2
	OptTreeHandler     OptType = 3
	OptDocumentNode    OptType = 4
	OptEnableScripting OptType = 5
	OptEnableStyling   OptType = 6
	OptPause           OptType = 7
)

// OptParams is the parameter block passed with an option code. The engine rejects a
// block whose OptType does not match the code with BadParm.
type OptParams interface {
	OptType() OptType
}

// TokenHandlerParams installs a raw token sink.
type TokenHandlerParams struct {
	Handler func(tokenType int32, data String) Error
}

// ErrorHandlerParams installs a parse error sink.
type ErrorHandlerParams struct {
	Handler func(line, col uint32, message string)
}

// ContentModelParams forces the tokenizer content model.
type ContentModelParams struct {
	Model ContentModel
}

// TreeHandlerParams installs the tree callback vtable.
type TreeHandlerParams struct {
	Handler TreeHandler
}

// DocumentNodeParams sets the node that becomes the root of the tree.
type DocumentNodeParams struct {
	Node Node
}

// EnableScriptingParams toggles the scripting flag.
type EnableScriptingParams struct {
	Enable bool
}

// EnableStylingParams toggles style completion notifications.
type EnableStylingParams struct {
	Enable bool
}

// PauseParams suspends or resumes processing of buffered input.
type PauseParams struct {
	Paused bool
}

func (TokenHandlerParams) OptType() OptType    { return OptTokenHandler }
func (ErrorHandlerParams) OptType() OptType    { return OptErrorHandler }
func (ContentModelParams) OptType() OptType    { return OptContentModel }
func (TreeHandlerParams) OptType() OptType     { return OptTreeHandler }
func (DocumentNodeParams) OptType() OptType    { return OptDocumentNode }
func (EnableScriptingParams) OptType() OptType { return OptEnableScripting }
func (EnableStylingParams) OptType() OptType   { return OptEnableStyling }
func (PauseParams) OptType() OptType           { return OptPause }

// Engine is a tokenizer and tree-construction engine instance.
//
// An Engine is single-threaded. InsertChunk is only valid while the engine is inside a
// CompleteScript callback. After Destroy no other method may be called.
type Engine interface {
	SetOpt(opt OptType, params OptParams) Error
	ParseChunk(data []byte) Error
	InsertChunk(data []byte) Error
	Completed() Error
	ReadCharset() (string, CharsetSource)
	Destroy() Error
}

// Factory creates an engine with an initial charset. With fixEncoding set the engine
// never overrides the charset from document content.
type Factory func(encoding string, fixEncoding bool) (Engine, Error)
