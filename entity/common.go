package entity

import (
	"dxf/config"
	"dxf/dwire"
	"dxf/record"

	"github.com/pkg/errors"
)

const (
	ColorByBlock = 0
	ColorByLayer = 256

	LineweightByLayer int16 = -1
	LineweightByBlock int16 = -2

	ColorValueUnset = -1
)

// Space tells whether an entity lives in model space or paper space.
type Space int16

const (
	ModelSpace Space = 0
	PaperSpace Space = 1
)

func (s *Space) Decode(raw string) error {
	var v int16
	if err := dwire.DecodeField(raw, &v); err != nil {
		return err
	}
	*s = Space(v)
	return nil
}

func (s Space) Encode(precision int) (string, error) {
	return dwire.EncodeField(int16(s), precision)
}

func (s Space) Int() int {
	return int(s)
}

// Vector is a point or direction in world coordinates.
type Vector struct {
	X, Y, Z float64
}

// UnitZ is the default extrusion direction.
var UnitZ = Vector{0, 0, 1}

func (v *Vector) bind(code int) []*record.Rule {
	return []*record.Rule{
		record.Bind(code, &v.X),
		record.Bind(code+10, &v.Y),
		record.Bind(code+20, &v.Z),
	}
}

// Common holds the fields shared by graphical entities.
type Common struct {
	Handle           dwire.Handle
	Linetype         string
	Layer            string
	Elevation        float64
	Thickness        float64
	LinetypeScale    float64
	Visibility       int16
	Color            int
	Space            Space
	Lineweight       int16
	PlotStyleName    string
	ColorValue       int
	ColorName        string
	Transparency     int
	Material         string
	ShadowMode       int16
	GraphicsDataSize int
	GraphicsData     []string
	Extrusion        Vector
	SoftOwner        string
	HardOwner        string
}

func (c *Common) common() *Common {
	return c
}

func (c *Common) ID() dwire.Handle {
	return c.Handle
}

func (c *Common) init() {
	defaults := config.LoadedEntityDefaults()
	*c = Common{
		Handle:        dwire.NoHandle,
		Linetype:      defaults.Linetype,
		Layer:         defaults.Layer,
		LinetypeScale: 1.0,
		Color:         ColorByLayer,
		Lineweight:    LineweightByLayer,
		ColorValue:    ColorValueUnset,
		Extrusion:     UnitZ,
	}
}

// rules does not include code 92, whose meaning differs between schemas.
func (c *Common) rules() []*record.Rule {
	rules := []*record.Rule{
		record.Bind(5, &c.Handle),
		record.Bind(6, &c.Linetype),
		record.Bind(8, &c.Layer),
		record.Bind(38, &c.Elevation).Until(dwire.R11),
		record.Bind(39, &c.Thickness),
		record.Bind(48, &c.LinetypeScale).Since(dwire.R13),
		record.Bind(60, &c.Visibility).Since(dwire.R13).Range(0, 1),
		record.Bind(62, &c.Color),
		record.Bind(67, &c.Space).Range(0, 1),
		record.Bind(284, &c.ShadowMode).Since(dwire.R2007).Range(0, 3),
		record.Bind(310, &c.GraphicsData).Limit(record.MaxParams),
		record.Bind(330, &c.SoftOwner),
		record.Bind(347, &c.Material).Since(dwire.R2007),
		record.Bind(360, &c.HardOwner),
		record.Bind(370, &c.Lineweight).Since(dwire.R2000),
		record.Bind(390, &c.PlotStyleName).Since(dwire.R2000),
		record.Bind(420, &c.ColorValue).Since(dwire.R2004),
		record.Bind(430, &c.ColorName).Since(dwire.R2004),
		record.Bind(440, &c.Transparency).Since(dwire.R2004),
		record.Ignore(102),
	}
	return append(rules, c.Extrusion.bind(210)...)
}

// finish replaces empty names with their defaults.
func (c *Common) finish() {
	defaults := config.LoadedEntityDefaults()
	if c.Layer == "" {
		c.Layer = defaults.Layer
	}
	if c.Linetype == "" {
		c.Linetype = defaults.Linetype
	}
}

func (c *Common) check(rec string) error {
	if err := record.CheckRange(rec, "Visibility", 60, int(c.Visibility), 0, 1); err != nil {
		return err
	}
	if err := record.CheckRange(rec, "Space", 67, int(c.Space), 0, 1); err != nil {
		return err
	}
	if err := record.CheckRange(rec, "ShadowMode", 284, int(c.ShadowMode), 0, 3); err != nil {
		return err
	}
	return record.CheckLimit(rec, "GraphicsData", 310, len(c.GraphicsData), record.MaxParams)
}

// repair substitutes defaults for empty names and reports each repair.
func (c *Common) repair(e *record.Encoder) {
	defaults := config.LoadedEntityDefaults()
	if c.Layer == "" {
		e.Warnf(8, "empty layer, using %q", defaults.Layer)
		c.Layer = defaults.Layer
	}
	if c.Linetype == "" {
		e.Warnf(6, "empty linetype, using %q", defaults.Linetype)
		c.Linetype = defaults.Linetype
	}
}

// encodeHead stages everything from the handle to the entity properties.
// The announcement must already be staged.
func (c *Common) encodeHead(e *record.Encoder) {
	e.Handle(5, c.Handle)
	e.Group("ACAD_REACTORS", 330, c.SoftOwner)
	e.Group("ACAD_XDICTIONARY", 360, c.HardOwner)
	e.Marker("AcDbEntity")
	if c.Space == PaperSpace {
		e.Field(67, c.Space)
	}
	e.Field(8, c.Layer)
	e.FieldUnless(6, c.Linetype, config.LoadedEntityDefaults().Linetype)
	if e.AtMost(dwire.R11) && e.Options().Flatland && c.Elevation != 0 {
		e.Field(38, c.Elevation)
	}
	e.FieldUnless(62, c.Color, ColorByLayer)
	if e.AtLeast(dwire.R13) {
		e.FieldUnless(48, c.LinetypeScale, 1.0)
		e.FieldUnless(60, c.Visibility, int16(0))
	}
	if e.AtLeast(dwire.R2000) {
		e.FieldUnless(370, c.Lineweight, LineweightByLayer)
		e.Text(390, c.PlotStyleName)
	}
	if e.AtLeast(dwire.R2004) {
		e.FieldUnless(420, c.ColorValue, ColorValueUnset)
		e.Text(430, c.ColorName)
		e.FieldUnless(440, c.Transparency, 0)
	}
	if e.AtLeast(dwire.R2007) {
		e.Text(347, c.Material)
		e.FieldUnless(284, c.ShadowMode, int16(0))
	}
}

// encodeGraphics stages the proxy graphics. The size is written even when
// zero if always is set.
func (c *Common) encodeGraphics(e *record.Encoder, always bool) {
	if always || c.GraphicsDataSize != 0 || len(c.GraphicsData) > 0 {
		e.Field(92, c.GraphicsDataSize)
	}
	e.Strings(310, c.GraphicsData)
}

func (c *Common) equals(o *Common) bool {
	return c.Handle == o.Handle &&
		c.Linetype == o.Linetype &&
		c.Layer == o.Layer &&
		c.Elevation == o.Elevation &&
		c.Thickness == o.Thickness &&
		c.LinetypeScale == o.LinetypeScale &&
		c.Visibility == o.Visibility &&
		c.Color == o.Color &&
		c.Space == o.Space &&
		c.Lineweight == o.Lineweight &&
		c.PlotStyleName == o.PlotStyleName &&
		c.ColorValue == o.ColorValue &&
		c.ColorName == o.ColorName &&
		c.Transparency == o.Transparency &&
		c.Material == o.Material &&
		c.ShadowMode == o.ShadowMode &&
		c.GraphicsDataSize == o.GraphicsDataSize &&
		stringsEqual(c.GraphicsData, o.GraphicsData) &&
		c.Extrusion == o.Extrusion &&
		c.SoftOwner == o.SoftOwner &&
		c.HardOwner == o.HardOwner
}

// SetVisibility sets the visibility flag: 0 visible, 1 invisible.
func (c *Common) SetVisibility(v int16) error {
	if err := record.CheckRange("ENTITY", "Visibility", 60, int(v), 0, 1); err != nil {
		return err
	}
	c.Visibility = v
	return nil
}

func (c *Common) SetSpace(s Space) error {
	if err := record.CheckRange("ENTITY", "Space", 67, int(s), 0, 1); err != nil {
		return err
	}
	c.Space = s
	return nil
}

func (c *Common) SetShadowMode(m int16) error {
	if err := record.CheckRange("ENTITY", "ShadowMode", 284, int(m), 0, 3); err != nil {
		return err
	}
	c.ShadowMode = m
	return nil
}

// SetColor sets the ACI color. Negative values mark a layer that is off.
func (c *Common) SetColor(color int) error {
	if err := record.CheckRange("ENTITY", "Color", 62, color, -ColorByLayer, ColorByLayer); err != nil {
		return err
	}
	c.Color = color
	return nil
}

func (c *Common) SetLinetypeScale(scale float64) error {
	if scale <= 0 {
		return &record.RangeError{
			Record: "ENTITY",
			Field:  "LinetypeScale",
			Code:   48,
			Value:  scale,
			Reason: "must be positive",
		}
	}
	c.LinetypeScale = scale
	return nil
}

func (c *Common) SetLayer(name string) error {
	if name == "" {
		return errors.New("layer name must not be empty")
	}
	c.Layer = name
	return nil
}

func (c *Common) SetLinetype(name string) error {
	if name == "" {
		return errors.New("linetype name must not be empty")
	}
	c.Linetype = name
	return nil
}

// AppendGraphicsData appends one chunk of proxy graphics.
func (c *Common) AppendGraphicsData(chunk string) error {
	if err := record.CheckLimit("ENTITY", "GraphicsData", 310, len(c.GraphicsData)+1, record.MaxParams); err != nil {
		return err
	}
	c.GraphicsData = append(c.GraphicsData, chunk)
	return nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func handlesEqual(a, b []dwire.Handle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
