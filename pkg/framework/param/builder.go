package param

// Builder assembles a Parameter. Settings may be given in any order: the
// default is kept as a plain value and normalized against the final range
// in Build.
type Builder struct {
	param      *Parameter
	plainDef   float64
	hasDefault bool
}

// New starts an automatable parameter with range 0-1.
func New(id uint32, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:        id,
			Name:      name,
			ShortName: name,
			Min:       0,
			Max:       1,
			Flags:     CanAutomate,
		},
	}
}

// Range sets a continuous plain range.
func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min = min
	b.param.Max = max
	b.param.StepCount = 0
	return b
}

// Integer makes the parameter discrete over the whole numbers in [min, max].
func (b *Builder) Integer(min, max int) *Builder {
	b.param.Min = float64(min)
	b.param.Max = float64(max)
	b.param.StepCount = int32(max - min)
	return b
}

// Default sets the default as a plain value.
func (b *Builder) Default(plain float64) *Builder {
	b.plainDef = plain
	b.hasDefault = true
	return b
}

// Toggle makes a two-state parameter shown as On/Off.
func (b *Builder) Toggle() *Builder {
	b.Integer(0, 1)
	return b.Formatter(OnOffFormatter, OnOffParser)
}

// List marks the parameter as a list of named options.
func (b *Builder) List() *Builder {
	b.param.Flags |= IsList
	return b
}

// Bypass marks this as the plugin's bypass switch.
func (b *Builder) Bypass() *Builder {
	b.param.Flags |= IsBypass
	return b
}

// Formatter sets custom display and parsing of plain values.
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build returns the parameter set to its default. Without Default the
// default is the bottom of the range.
func (b *Builder) Build() *Parameter {
	p := b.param
	if b.hasDefault {
		p.DefaultValue = p.Normalize(b.plainDef)
	} else {
		p.DefaultValue = 0
	}
	p.ResetToDefault()
	p.DefaultValue = p.GetValue()
	return p
}
