package entity

import (
	"strings"
	"unicode/utf8"

	"dxf/chain"
	"dxf/config"
	"dxf/dwire"
	"dxf/record"

	"github.com/pkg/errors"
)

// ChunkLen is the length of one continuation chunk of cell text.
const ChunkLen = 250

// Cell types (code 171).
const (
	CellText  int16 = 1
	CellBlock int16 = 2
)

// TableCell is one cell of a Table. Cells are not separate records on the
// wire; they are runs of tags inside the table, each starting with code
// 171.
type TableCell struct {
	Type         int16
	Flag         int16
	Merged       int16
	Autofit      int16
	BorderWidth  float64
	BorderHeight float64
	OverrideFlag int
	Override     int16
	VirtualEdge  int16
	Rotation     float64

	// Text holds the last piece of the cell text, TextChunks the full
	// ChunkLen pieces before it.
	Text       string
	TextChunks []string
	TextStyle  string
	TextHeight float64
	Alignment  int16

	BackgroundColor   int16
	ContentColor      int16
	RightBorderColor  int16
	BottomBorderColor int16
	LeftBorderColor   int16
	TopBorderColor    int16

	RightBorderLineweight  int16
	BottomBorderLineweight int16
	LeftBorderLineweight   int16
	TopBorderLineweight    int16

	FillOverride        int16
	RightBorderVisible  int16
	BottomBorderVisible int16
	LeftBorderVisible   int16
	TopBorderVisible    int16

	BlockRecord   string
	BlockScale    float64
	AttdefCount   int
	AttdefHandles []dwire.Handle
	AttdefText    string
	FieldObject   string

	Next *TableCell

	released bool
}

var _ chain.Node = (*TableCell)(nil)

var Cells = &chain.Manager{
	Kind: "CELL",
	New: func() chain.Node {
		return new(TableCell)
	},
	Defaults: func(n chain.Node) {
		n.(*TableCell).init()
	},
}

func NewTableCell() *TableCell {
	return Cells.Init(nil).(*TableCell)
}

func InitTableCell(c *TableCell) *TableCell {
	if c == nil {
		return NewTableCell()
	}
	return Cells.Init(c).(*TableCell)
}

func (c *TableCell) init() {
	*c = TableCell{
		Type:                   CellText,
		TextStyle:              config.LoadedEntityDefaults().TextStyle,
		TextHeight:             1.0,
		ContentColor:           ColorByLayer,
		RightBorderColor:       ColorByLayer,
		BottomBorderColor:      ColorByLayer,
		LeftBorderColor:        ColorByLayer,
		TopBorderColor:         ColorByLayer,
		RightBorderLineweight:  LineweightByLayer,
		BottomBorderLineweight: LineweightByLayer,
		LeftBorderLineweight:   LineweightByLayer,
		TopBorderLineweight:    LineweightByLayer,
		BlockScale:             1.0,
	}
}

func (c *TableCell) Successor() chain.Node {
	if c.Next == nil {
		return nil
	}
	return c.Next
}

func (c *TableCell) Detach() {
	c.Next = nil
}

func (c *TableCell) Release() {
	c.released = true
}

func (c *TableCell) Released() bool {
	return c.released
}

// rules excludes 171, which the enclosing table uses to start a cell.
func (c *TableCell) rules() []*record.Rule {
	return []*record.Rule{
		record.Bind(1, &c.Text),
		record.Bind(2, &c.TextChunks).Limit(record.MaxParams),
		record.Bind(3, &c.TextChunks).Limit(record.MaxParams),
		record.Bind(7, &c.TextStyle),
		record.Bind(63, &c.BackgroundColor),
		record.Bind(64, &c.ContentColor),
		record.Bind(65, &c.RightBorderColor),
		record.Bind(66, &c.BottomBorderColor),
		record.Bind(68, &c.LeftBorderColor),
		record.Bind(69, &c.TopBorderColor),
		record.Bind(91, &c.OverrideFlag).Since(dwire.R2007),
		record.Bind(140, &c.TextHeight),
		record.Bind(144, &c.BlockScale),
		record.Bind(145, &c.Rotation),
		record.Bind(170, &c.Alignment),
		record.Bind(172, &c.Flag),
		record.Bind(173, &c.Merged),
		record.Bind(174, &c.Autofit),
		record.Bind(175, &c.BorderWidth),
		record.Bind(176, &c.BorderHeight),
		record.Bind(177, &c.Override),
		record.Bind(178, &c.VirtualEdge),
		record.Bind(179, &c.AttdefCount),
		record.Bind(275, &c.RightBorderLineweight),
		record.Bind(276, &c.BottomBorderLineweight),
		record.Bind(278, &c.LeftBorderLineweight),
		record.Bind(279, &c.TopBorderLineweight),
		record.Bind(283, &c.FillOverride),
		record.Bind(285, &c.RightBorderVisible),
		record.Bind(286, &c.BottomBorderVisible),
		record.Bind(288, &c.LeftBorderVisible),
		record.Bind(289, &c.TopBorderVisible),
		record.Bind(300, &c.AttdefText),
		record.Bind(331, &c.AttdefHandles).Limit(record.MaxParams),
		record.Bind(340, &c.BlockRecord),
		record.Bind(344, &c.FieldObject),
	}
}

// finish applies defaults and reports inconsistencies once the cell's last
// tag has been read.
func (c *TableCell) finish(dec *record.Decoder) {
	if c.TextStyle == "" {
		c.TextStyle = config.LoadedEntityDefaults().TextStyle
	}
	if c.Type < CellText || c.Type > CellBlock {
		dec.Warnf(171, "cell type %d out of range [%d, %d]", c.Type, CellText, CellBlock)
	}
	if c.AttdefCount != len(c.AttdefHandles) {
		dec.Warnf(179, "declared %d attribute definitions, found %d", c.AttdefCount, len(c.AttdefHandles))
	}
	for i, chunk := range c.TextChunks {
		if utf8.RuneCountInString(chunk) != ChunkLen {
			dec.Warnf(3, "text chunk %d has %d characters, expected %d", i, utf8.RuneCountInString(chunk), ChunkLen)
		}
	}
}

func (c *TableCell) check() error {
	if c.released {
		return record.ErrReleased
	}
	if err := record.CheckRange("CELL", "Type", 171, int(c.Type), int(CellText), int(CellBlock)); err != nil {
		return err
	}
	if err := record.CheckLimit("CELL", "TextChunks", 3, len(c.TextChunks), record.MaxParams); err != nil {
		return err
	}
	if err := record.CheckLimit("CELL", "AttdefHandles", 331, len(c.AttdefHandles), record.MaxParams); err != nil {
		return err
	}
	for _, chunk := range c.TextChunks {
		if n := utf8.RuneCountInString(chunk); n > ChunkLen {
			return &record.RangeError{
				Record: "CELL",
				Field:  "TextChunks",
				Code:   3,
				Value:  n,
				Reason: "chunk longer than 250 characters",
			}
		}
	}
	if n := utf8.RuneCountInString(c.Text); n > ChunkLen {
		return &record.RangeError{
			Record: "CELL",
			Field:  "Text",
			Code:   1,
			Value:  n,
			Reason: "text longer than 250 characters must be split into chunks",
		}
	}
	return nil
}

func (c *TableCell) encodeTo(e *record.Encoder) {
	e.SetRecord("CELL")
	e.Field(171, c.Type)
	e.Field(172, c.Flag)
	e.Field(173, c.Merged)
	e.Field(174, c.Autofit)
	e.Field(175, c.BorderWidth)
	e.Field(176, c.BorderHeight)
	if e.AtLeast(dwire.R2007) {
		e.Field(91, c.OverrideFlag)
	}
	e.FieldUnless(177, c.Override, int16(0))
	e.Field(178, c.VirtualEdge)
	e.Field(145, c.Rotation)
	e.Text(344, c.FieldObject)
	e.Strings(3, c.TextChunks)
	e.Field(1, c.Text)
	e.FieldUnless(7, c.TextStyle, config.LoadedEntityDefaults().TextStyle)
	e.FieldUnless(140, c.TextHeight, 1.0)
	e.FieldUnless(170, c.Alignment, int16(0))
	e.FieldUnless(63, c.BackgroundColor, int16(0))
	e.FieldUnless(64, c.ContentColor, int16(ColorByLayer))
	e.FieldUnless(65, c.RightBorderColor, int16(ColorByLayer))
	e.FieldUnless(66, c.BottomBorderColor, int16(ColorByLayer))
	e.FieldUnless(68, c.LeftBorderColor, int16(ColorByLayer))
	e.FieldUnless(69, c.TopBorderColor, int16(ColorByLayer))
	e.FieldUnless(275, c.RightBorderLineweight, LineweightByLayer)
	e.FieldUnless(276, c.BottomBorderLineweight, LineweightByLayer)
	e.FieldUnless(278, c.LeftBorderLineweight, LineweightByLayer)
	e.FieldUnless(279, c.TopBorderLineweight, LineweightByLayer)
	e.FieldUnless(283, c.FillOverride, int16(0))
	e.FieldUnless(285, c.RightBorderVisible, int16(0))
	e.FieldUnless(286, c.BottomBorderVisible, int16(0))
	e.FieldUnless(288, c.LeftBorderVisible, int16(0))
	e.FieldUnless(289, c.TopBorderVisible, int16(0))
	e.Text(340, c.BlockRecord)
	e.Field(144, c.BlockScale)
	e.Count(179, c.AttdefCount, len(c.AttdefHandles))
	e.Handles(331, c.AttdefHandles)
	e.Text(300, c.AttdefText)
}

func (c *TableCell) Equals(other *TableCell) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Type == other.Type &&
		c.Flag == other.Flag &&
		c.Merged == other.Merged &&
		c.Autofit == other.Autofit &&
		c.BorderWidth == other.BorderWidth &&
		c.BorderHeight == other.BorderHeight &&
		c.OverrideFlag == other.OverrideFlag &&
		c.Override == other.Override &&
		c.VirtualEdge == other.VirtualEdge &&
		c.Rotation == other.Rotation &&
		c.Text == other.Text &&
		stringsEqual(c.TextChunks, other.TextChunks) &&
		c.TextStyle == other.TextStyle &&
		c.TextHeight == other.TextHeight &&
		c.Alignment == other.Alignment &&
		c.BackgroundColor == other.BackgroundColor &&
		c.ContentColor == other.ContentColor &&
		c.RightBorderColor == other.RightBorderColor &&
		c.BottomBorderColor == other.BottomBorderColor &&
		c.LeftBorderColor == other.LeftBorderColor &&
		c.TopBorderColor == other.TopBorderColor &&
		c.RightBorderLineweight == other.RightBorderLineweight &&
		c.BottomBorderLineweight == other.BottomBorderLineweight &&
		c.LeftBorderLineweight == other.LeftBorderLineweight &&
		c.TopBorderLineweight == other.TopBorderLineweight &&
		c.FillOverride == other.FillOverride &&
		c.RightBorderVisible == other.RightBorderVisible &&
		c.BottomBorderVisible == other.BottomBorderVisible &&
		c.LeftBorderVisible == other.LeftBorderVisible &&
		c.TopBorderVisible == other.TopBorderVisible &&
		c.BlockRecord == other.BlockRecord &&
		c.BlockScale == other.BlockScale &&
		c.AttdefCount == other.AttdefCount &&
		handlesEqual(c.AttdefHandles, other.AttdefHandles) &&
		c.AttdefText == other.AttdefText &&
		c.FieldObject == other.FieldObject
}

// SetType sets the cell type, CellText or CellBlock.
func (c *TableCell) SetType(t int16) error {
	if err := record.CheckRange("CELL", "Type", 171, int(t), int(CellText), int(CellBlock)); err != nil {
		return err
	}
	c.Type = t
	return nil
}

// SetText stores s, splitting it into ChunkLen chunks when it is too long
// for a single value.
func (c *TableCell) SetText(s string) error {
	runes := []rune(s)
	var chunks []string
	for len(runes) > ChunkLen {
		chunks = append(chunks, string(runes[:ChunkLen]))
		runes = runes[ChunkLen:]
	}
	if err := record.CheckLimit("CELL", "TextChunks", 3, len(chunks), record.MaxParams); err != nil {
		return err
	}
	c.TextChunks = chunks
	c.Text = string(runes)
	return nil
}

// FullText joins the chunks and the final piece of the cell text.
func (c *TableCell) FullText() string {
	return strings.Join(c.TextChunks, "") + c.Text
}

// AppendAttdef adds an attribute definition handle and keeps the declared
// count in step.
func (c *TableCell) AppendAttdef(h dwire.Handle) error {
	if !h.Valid() {
		return errors.New("attribute definition handle is unassigned")
	}
	if err := record.CheckLimit("CELL", "AttdefHandles", 331, len(c.AttdefHandles)+1, record.MaxParams); err != nil {
		return err
	}
	c.AttdefHandles = append(c.AttdefHandles, h)
	c.AttdefCount = len(c.AttdefHandles)
	return nil
}

func FreeTableCell(c *TableCell) error {
	if c == nil {
		return chain.ErrNilNode
	}
	return Cells.FreeOne(c)
}

func FreeTableCellChain(head *TableCell) (int, error) {
	if head == nil {
		return 0, nil
	}
	return Cells.FreeChain(head)
}
