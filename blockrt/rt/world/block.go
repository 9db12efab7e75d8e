package world

// Block is a cell type. Zero is air; any other value is solid and samples
// texture layer Block-1.
type Block uint8

const (
	Air Block = iota
	StoneBricks
	Grass
	Dirt
	MossyBricks
	Clay
	Stone
	Planks
)

func (b Block) Solid() bool { return b != Air }

// Material is the instance record value for the block: its texture layer.
func (b Block) Material() int16 { return int16(b) - 1 }

// Strata picks block types for a generated column.
type Strata struct {
	// Plaza fills every cell of a column inside the buildable rectangle.
	Plaza Block
	// Surface tops columns outside the plaza.
	Surface Block
	// Subsurface fills the cells just below the surface.
	Subsurface Block
	// Base fills the rest of the column.
	Base Block
	// Bottom is the lowest generated cell.
	Bottom Block
	// Floor sits under every column at y = 0.
	Floor Block
}

func DefaultStrata() Strata {
	return Strata{
		Plaza:      StoneBricks,
		Surface:    Grass,
		Subsurface: Dirt,
		Base:       Stone,
		Bottom:     Clay,
		Floor:      Grass,
	}
}

// MakeColumn builds an h+1 tall column for cell (x, z). Columns inside the
// buildableSize square starting at (padding, padding) are filled with the
// plaza type; the rest are layered surface, subsurface (top three cells),
// base and bottom. The floor block is always at index 0.
func MakeColumn(x, z, h, padding, buildableSize int, s Strata) []Block {
	if h < 0 {
		h = 0
	}
	col := make([]Block, h+1)
	col[0] = s.Floor
	cells := col[1:]
	inside := x >= padding && z >= padding && x < padding+buildableSize && z < padding+buildableSize
	for i := range cells {
		switch {
		case inside:
			cells[i] = s.Plaza
		case i == h-1:
			cells[i] = s.Surface
		case h-i < 4:
			cells[i] = s.Subsurface
		case i == 0:
			cells[i] = s.Bottom
		default:
			cells[i] = s.Base
		}
	}
	return col
}
