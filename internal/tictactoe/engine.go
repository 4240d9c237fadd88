package tictactoe

import (
	"github.com/playrooms/tictactoe-rooms/internal/apperror"
	"github.com/playrooms/tictactoe-rooms/internal/entity"
)

// WinCombos lists every winning triple: 3 rows, 3 columns, 2 diagonals.
// CheckWin scans them in this order, so the first matching triple wins ties.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// ApplyMove places symbol on the given cell. It guards the cell index and
// occupancy only; turn order is the caller's responsibility.
func ApplyMove(board *[9]string, cell int, symbol string) error {
	if cell < 0 || cell >= len(board) {
		return apperror.ErrInvalidCell
	}

	if board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	board[cell] = symbol

	return nil
}

// CheckWin returns the first winning triple whose three cells are non-empty
// and identical, in WinCombos order.
func CheckWin(board [9]string) ([3]int, bool) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return combo, true
		}
	}

	return [3]int{}, false
}

// CheckDraw reports whether every cell is occupied. A win takes precedence:
// callers must run CheckWin first.
func CheckDraw(board [9]string) bool {
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return false
		}
	}

	return true
}
