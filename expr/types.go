package expr

// BinaryOp identifies a binary operator.
type BinaryOp string

const (
	// Comparison operators
	OpEq BinaryOp = "eq"
	OpNe BinaryOp = "ne"
	OpLt BinaryOp = "lt"
	OpLe BinaryOp = "le"
	OpGt BinaryOp = "gt"
	OpGe BinaryOp = "ge"

	// Arithmetic operators
	OpAdd BinaryOp = "add"
	OpSub BinaryOp = "sub"
	OpMul BinaryOp = "mul"
	OpDiv BinaryOp = "div"
	OpMod BinaryOp = "mod"

	// Logical operators
	OpAnd BinaryOp = "and"
	OpOr  BinaryOp = "or"
)

// UnaryOp identifies a unary operator.
type UnaryOp string

const (
	OpNot UnaryOp = "not"
	OpNeg UnaryOp = "-"
)

// Recognized call names. Calls with other names are kept in the tree
// and rejected by the encoder.
const (
	FuncLength        = "length"
	FuncIncludes      = "includes"
	FuncRound         = "round"
	FuncAny           = "any"
	FuncAll           = "all"
	FuncCount         = "count"
	FuncSum           = "sum"
	FuncMin           = "min"
	FuncMax           = "max"
	FuncAverage       = "average"
	FuncExpand        = "$expand"
	FuncGeoDistance   = "geo.distance"
	FuncGeoIntersects = "geo.intersects"
	FuncGeoLength     = "geo.length"
)

// Node is the interface implemented by all expression nodes.
// The set of implementations is closed; use a type switch to inspect a node.
type Node interface {
	exprNode()
}

// Literal is a constant value.
type Literal struct {
	Value any
}

// Parameter references a lambda parameter by the name the caller chose.
type Parameter struct {
	Name string
}

// Member is a field access on Target.
type Member struct {
	Target Node
	Field  string
}

// Unary applies Op to Operand.
type Unary struct {
	Op      UnaryOp
	Operand Node
}

// Binary applies Op to Left and Right.
type Binary struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

// Conditional is a ternary test ? whenTrue : whenFalse.
type Conditional struct {
	Test      Node
	WhenTrue  Node
	WhenFalse Node
}

// Call is a method call on Target, or a free function call when Target is nil.
type Call struct {
	Target Node
	Name   string
	Args   []Node
}

// Property is a single key of an object literal.
type Property struct {
	Key   string
	Value Node
}

// ObjectLiteral is an object-literal projection with ordered keys.
type ObjectLiteral struct {
	Props []Property
}

// Lambda binds Param within Body.
// Param is never renamed: it is echoed verbatim in collection lambdas.
// Context is the optional second parameter of a two-argument selector.
type Lambda struct {
	Param   string
	Context string
	Body    Node
}

func (*Literal) exprNode()       {}
func (*Parameter) exprNode()     {}
func (*Member) exprNode()        {}
func (*Unary) exprNode()         {}
func (*Binary) exprNode()        {}
func (*Conditional) exprNode()   {}
func (*Call) exprNode()          {}
func (*ObjectLiteral) exprNode() {}
func (*Lambda) exprNode()        {}

// IsComparison reports whether op is one of eq/ne/lt/le/gt/ge.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// MemberPath flattens a member chain rooted at a parameter into its
// root parameter and field segments.
// ok is false when n is not a pure member chain.
func MemberPath(n Node) (root *Parameter, fields []string, ok bool) {
	for {
		switch m := n.(type) {
		case *Member:
			fields = append(fields, m.Field)
			n = m.Target
		case *Parameter:
			for i, j := 0, len(fields)-1; i < j; i, j = i+1, j-1 {
				fields[i], fields[j] = fields[j], fields[i]
			}
			return m, fields, true
		default:
			return nil, nil, false
		}
	}
}
