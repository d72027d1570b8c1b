package board

import "github.com/mcoot/blockfall/internal/model"

// Garbage rows are only tracked here. Inserting them into the field is not
// implemented; the pending count feeds the top-out check after each lock.

// QueueGarbage records incoming garbage rows
func (b *Board) QueueGarbage(rows int) {
	if rows <= 0 {
		return
	}
	b.pendingGarbage = append(b.pendingGarbage, rows)
}

// PendingGarbage returns the number of garbage rows waiting
func (b *Board) PendingGarbage() int {
	total := 0
	for _, rows := range b.pendingGarbage {
		total += rows
	}
	return total
}

// CounterGarbage cancels pending garbage with cleared lines, oldest first,
// and returns the lines left over to send to an opponent
func (b *Board) CounterGarbage(lines int) int {
	for len(b.pendingGarbage) > 0 && lines > 0 {
		head := b.pendingGarbage[0]
		if lines < head {
			b.pendingGarbage[0] = head - lines
			return 0
		}
		lines -= head
		b.pendingGarbage = b.pendingGarbage[1:]
		if lines == 0 {
			return 0
		}
	}
	return lines
}

// topOutCheck reports whether rows of garbage would push the stack past the
// top of the buffer. The free space is every row above the highest settled
// cell.
func (b *Board) topOutCheck(rows int) bool {
	free := 2 * model.BoardHeight
	if y, ok := b.HighestRow(); ok {
		free = y + model.BoardHeight
	}
	return rows >= free
}
