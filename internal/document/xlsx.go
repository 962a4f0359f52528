package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"math"

	"github.com/xuri/excelize/v2"

	"clientreport/internal/report"
)

const (
	// SheetName is the single worksheet of an encoded report.
	SheetName = "Report"

	// ImageDisplayWidth is 5in at 96 DPI.
	ImageDisplayWidth = 480

	rowHeightPx = 20
)

// XLSXEncoder writes reports as Excel workbooks.
type XLSXEncoder struct{}

// NewXLSXEncoder returns an XLSXEncoder.
func NewXLSXEncoder() *XLSXEncoder { return &XLSXEncoder{} }

func (*XLSXEncoder) Extension() string { return ".xlsx" }

func (*XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Encode lays the report blocks out top to bottom in column A.
func (e *XLSXEncoder) Encode(rep *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 80); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	styles, err := newHeadingStyles(f)
	if err != nil {
		return nil, err
	}

	row := 1
	for i, b := range rep.Blocks {
		cell := fmt.Sprintf("A%d", row)
		switch b.Kind {
		case report.BlockHeading:
			if err := f.SetCellStr(SheetName, cell, b.Text); err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
			if err := f.SetCellStyle(SheetName, cell, cell, styles.forLevel(b.Level)); err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
			row += 2
		case report.BlockParagraph:
			if err := f.SetCellStr(SheetName, cell, b.Text); err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
			row++
		case report.BlockChart:
			rows, err := addImage(f, cell, b)
			if err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
			row += rows
		default:
			return nil, fmt.Errorf("block %d: unsupported kind %s", i, b.Kind)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type headingStyles struct {
	title   int
	section int
}

func newHeadingStyles(f *excelize.File) (headingStyles, error) {
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 18}})
	if err != nil {
		return headingStyles{}, fmt.Errorf("title style: %w", err)
	}
	section, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return headingStyles{}, fmt.Errorf("section style: %w", err)
	}
	return headingStyles{title: title, section: section}, nil
}

func (s headingStyles) forLevel(level int) int {
	if level == 0 {
		return s.title
	}
	return s.section
}

// addImage places a chart at cell scaled to ImageDisplayWidth and
// returns how many rows it covers, plus one spacer row.
func addImage(f *excelize.File, cell string, b report.Block) (int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b.Image))
	if err != nil {
		return 0, fmt.Errorf("decode chart %q: %w", b.Text, err)
	}
	if cfg.Width == 0 {
		return 0, fmt.Errorf("chart %q has zero width", b.Text)
	}
	scale := float64(ImageDisplayWidth) / float64(cfg.Width)

	err = f.AddPictureFromBytes(SheetName, cell, &excelize.Picture{
		Extension: ".png",
		File:      b.Image,
		Format: &excelize.GraphicOptions{
			AltText:         b.Text,
			ScaleX:          scale,
			ScaleY:          scale,
			LockAspectRatio: true,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("add chart %q: %w", b.Text, err)
	}

	height := float64(cfg.Height) * scale
	return int(math.Ceil(height/rowHeightPx)) + 1, nil
}
