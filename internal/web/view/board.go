package view

import (
	"context"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/blockfall/internal/model"
)

// VisibleBufferRows is how many buffer rows above the field are drawn, enough
// to show a piece at its spawn position
const VisibleBufferRows = 2

// BoardID is the element id of the container around a session's board, used
// for out-of-band swaps
func BoardID(id model.GameID) string {
	return "board-" + string(id)
}

// Board renders a board state string as a grid of cells. States of the wrong
// length render as an empty grid.
func Board(id model.GameID, state string) templ.Component {
	if len(state) != model.SnapshotLength {
		state = strings.Repeat(string(model.EmptySymbol), model.SnapshotLength)
	}
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<table class="board" data-game="`, templ.EscapeString(string(id)), `">`)
		for y := -VisibleBufferRows; y < model.BoardHeight; y++ {
			rowClass := "row"
			if y < 0 {
				rowClass = "row buffer"
			}
			h.raw(`<tr class="`, rowClass, `" data-y="`, strconv.Itoa(y), `">`)
			for x := 0; x < model.BoardWidth; x++ {
				symbol := state[model.Point{X: x, Y: y}.SnapshotIndex()]
				h.raw(`<td class="cell `, cellClass(symbol), `"></td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</table>`)
	})
}

func cellClass(symbol byte) string {
	if symbol == model.EmptySymbol {
		return "cell-empty"
	}
	p, ok := model.PieceFromSymbol(symbol)
	if !ok {
		return "cell-empty"
	}
	switch p {
	case model.PieceGhost:
		return "cell-ghost"
	case model.PieceGarbage:
		return "cell-garbage"
	default:
		return "cell-" + strings.ToLower(p.String())
	}
}

// Pieces renders a list of upcoming or held pieces
func Pieces(class string, pieces []model.Piece) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<ol class="pieces `, templ.EscapeString(class), `">`)
		for _, p := range pieces {
			h.raw(`<li class="piece `, cellClass(p.Symbol()), `">`, p.String(), `</li>`)
		}
		h.raw(`</ol>`)
	})
}
