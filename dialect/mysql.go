package dialect

type MySQL struct{}

func NewMySQLDialect() Dialect {
	return &MySQL{}
}

func (m MySQL) Name() string {
	return "mysql"
}

func (m MySQL) BindVar(int) string {
	return "?"
}

func (m MySQL) Named() bool {
	return false
}

func (m MySQL) RenderValue(v any) string {
	return renderLiteral(v)
}
