package source

// Decl is a top-level declaration. The set of implementations is closed:
// FunctionDecl, VariableDecl, ClassDecl, InterfaceDecl, EnumDecl and
// TypeAliasDecl.
type Decl interface {
	// DeclName returns the declared name, or "" when the form has none
	// (e.g. `export default function () {}`).
	DeclName() string

	// Text returns the verbatim source span of the declaration.
	Text() string

	decl()
}

// FunctionDecl is a function declaration, including generator and ambient forms.
type FunctionDecl struct {
	Name   string
	Source string
}

// VariableDecl is one binding of a var/let/const statement.
type VariableDecl struct {
	Name string

	// Source is the text of the declarator (`name = value`), not the whole statement.
	Source string

	// Initializer is nil when the binding has no `= value` part.
	Initializer *Initializer
}

// Initializer is the value expression bound by a VariableDecl.
type Initializer struct {
	Kind Kind
	Text string
}

// ClassDecl is a class declaration, including abstract classes.
type ClassDecl struct {
	Name   string
	Source string
}

// InterfaceDecl is an interface declaration.
type InterfaceDecl struct {
	Name   string
	Source string
}

// EnumDecl is an enum declaration, including const enums.
type EnumDecl struct {
	Name   string
	Source string
}

// TypeAliasDecl is a `type X = ...` declaration.
type TypeAliasDecl struct {
	Name   string
	Source string
}

func (d *FunctionDecl) DeclName() string  { return d.Name }
func (d *VariableDecl) DeclName() string  { return d.Name }
func (d *ClassDecl) DeclName() string     { return d.Name }
func (d *InterfaceDecl) DeclName() string { return d.Name }
func (d *EnumDecl) DeclName() string      { return d.Name }
func (d *TypeAliasDecl) DeclName() string { return d.Name }

func (d *FunctionDecl) Text() string  { return d.Source }
func (d *VariableDecl) Text() string  { return d.Source }
func (d *ClassDecl) Text() string     { return d.Source }
func (d *InterfaceDecl) Text() string { return d.Source }
func (d *EnumDecl) Text() string      { return d.Source }
func (d *TypeAliasDecl) Text() string { return d.Source }

func (*FunctionDecl) decl()  {}
func (*VariableDecl) decl()  {}
func (*ClassDecl) decl()     {}
func (*InterfaceDecl) decl() {}
func (*EnumDecl) decl()      {}
func (*TypeAliasDecl) decl() {}
