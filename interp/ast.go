package interp

// Node is any parsed syntax tree node. Every concrete node carries its own
// Span so diagnostics can point at exact source ranges.
type Node interface {
	Span() Span
}

type base struct{ span Span }

func (b base) Span() Span { return b.span }

// NumberNode is an INT or FLOAT literal.
type NumberNode struct {
	base
	Value any // int64 or float64
}

// StringNode is a STRING literal (already escape-decoded by the lexer).
type StringNode struct {
	base
	Value string
}

// FStringNode holds the raw decoded text of an f-string; the '{...}'
// sections inside it are resolved at evaluation time by evalFString.
type FStringNode struct {
	base
	Raw string
}

// ListNode is a list literal.
type ListNode struct {
	base
	Elements []Node
}

// DictEntry is one key/value pair of a DictNode.
type DictEntry struct {
	Key   Node
	Value Node
}

// DictNode is a dict literal, preserving source order.
type DictNode struct {
	base
	Entries []DictEntry
}

// VarAccessNode reads a name from the current scope chain.
type VarAccessNode struct {
	base
	Name string
}

// VarAssignNode binds Name to Value in the current scope frame.
type VarAssignNode struct {
	base
	Name  string
	Value Node
	Const bool
}

// BinOpNode is a binary operator application.
type BinOpNode struct {
	base
	Left  Node
	Op    TokenKind
	OpLit string // for keyword operators ("and"/"or")
	Right Node
}

// UnaryOpNode is a prefix operator application ('-', "not").
type UnaryOpNode struct {
	base
	Op   TokenKind
	OpLit string
	Node Node
}

// IfCase is one condition/body pair of an IfNode. Bodies are always blocks
// ({...}), so an if/elif/else chain always evaluates to null — it is used
// for its side effects, never as a value expression.
type IfCase struct {
	Condition Node
	Body      Node
}

// IfNode is the if/elif/else chain.
type IfNode struct {
	base
	Cases []IfCase
	Else  Node
}

// ForNode is a numeric range loop: for NAME = start to end (step step) body.
// Like If/While, it always evaluates to null.
type ForNode struct {
	base
	VarName string
	Start   Node
	End     Node
	Step    Node // nil => implicit 1
	Body    Node
}

// ForInNode iterates the elements produced by Iterable.
type ForInNode struct {
	base
	VarName  string
	Iterable Node
	Body     Node
}

// WhileNode is a condition-guarded loop.
type WhileNode struct {
	base
	Condition Node
	Body      Node
}

// Param is one formal parameter of a FuncDefNode.
type Param struct {
	Name    string
	Default Node // nil if required
	Dynamic Node // nil unless declared "name from expr"
}

// FuncDefNode defines a function, optionally anonymous.
type FuncDefNode struct {
	base
	Name         string // "" for anonymous
	Params       []Param
	Body         Node
	AutoReturn   bool // body is a bare expression ("-> expr"), implicitly returned
}

// CallNode applies Callee to Args.
type CallNode struct {
	base
	Callee Node
	Args   []Node
}

// ReturnNode exits the enclosing function, optionally with a value.
type ReturnNode struct {
	base
	Value Node // nil for bare "return"
}

// ContinueNode skips to the next loop iteration.
type ContinueNode struct{ base }

// BreakNode exits the enclosing loop.
type BreakNode struct{ base }

// ImportNode loads a module by dotted path and binds its first path segment
// in the current scope, nesting a Module value for each further segment. In
// legacy form (a quoted file path) the file is evaluated directly in the
// current scope.
type ImportNode struct {
	base
	Path      string
	LegacyStr bool // true => quoted-string legacy import form
}

// FromImportNode loads Path and binds only the listed names.
type FromImportNode struct {
	base
	Path  string
	Names []string
}

// DoNode is a braced block introducing a fresh child scope.
type DoNode struct {
	base
	Body Node
}

// TryNode runs Body; on a runtime error, binds it to BindName (if non-empty)
// and runs Handler.
type TryNode struct {
	base
	Body     Node
	BindName string
	Handler  Node
}

// IndexGetNode reads Collection[Index].
type IndexGetNode struct {
	base
	Collection Node
	Index      Node
}

// IndexSetNode writes Value to Collection[Index].
type IndexSetNode struct {
	base
	Collection Node
	Index      Node
	Value      Node
}

// DotGetNode reads Target.Field.
type DotGetNode struct {
	base
	Target Node
	Field  string
}

// DotSetNode writes Value to Target.Field.
type DotSetNode struct {
	base
	Target Node
	Field  string
	Value  Node
}

// SwitchCase is one "case expr: body" arm of a SwitchNode.
type SwitchCase struct {
	Value Node
	Body  Node
}

// SwitchNode dispatches on Scrutinee's equality against each case value.
type SwitchNode struct {
	base
	Scrutinee Node
	Cases     []SwitchCase
	Else      Node
}

// StructNode declares a named struct type with a fixed field list.
type StructNode struct {
	base
	Name   string
	Fields []string
}

// StructCreationNode instantiates a previously declared struct.
type StructCreationNode struct {
	base
	Name string
}

// BlockNode is a sequence of statements, e.g. a function or do-block body.
type BlockNode struct {
	base
	Statements []Node
}
