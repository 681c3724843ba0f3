package source

// Kind is the syntactic category of an initializer expression.
type Kind int

const (
	// KindOther is any expression that is neither an arrow function nor JSX.
	KindOther Kind = iota
	// KindArrowFunction is `(...) => ...`, async or not.
	KindArrowFunction
	// KindJSXElement is `<X>...</X>` or `<X/>`. A parenthesized element is KindOther.
	KindJSXElement
)

func (k Kind) String() string {
	switch k {
	case KindArrowFunction:
		return "ArrowFunction"
	case KindJSXElement:
		return "JsxElement"
	default:
		return "Other"
	}
}
