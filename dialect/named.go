package dialect

// Named renders markers as "@__param_N". SQL Server, SQLite (mattn) and
// pgx named arguments all accept this form.
type Named struct{}

func NewNamedDialect() Dialect {
	return &Named{}
}

func (Named) Name() string {
	return "named"
}

func (Named) BindVar(ordinal int) string {
	return "@" + ParamName(ordinal)
}

func (Named) Named() bool {
	return true
}

func (Named) RenderValue(v any) string {
	return renderLiteral(v)
}
