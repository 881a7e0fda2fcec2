package tape

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrNoInput is returned by Run when an In finds no input left.
var ErrNoInput = errors.New("tape: no input")

// Run executes prog against a growable byte tape with one movable
// head: a Left past the start of the backing slice is an error
// (there's no negative index to grow into), a Right past the end
// grows it, and every cell wraps mod 256 for free because it's a
// plain byte. An In at end of input returns ErrNoInput.
func Run(prog Program, in io.Reader, out io.Writer) error {
	jumps, err := matchBrackets(prog)
	if err != nil {
		return err
	}

	tape := make([]byte, 1, 4096)
	head := 0
	reader := bufio.NewReader(in)

	pc := 0
	for pc < len(prog) {
		switch prog[pc] {
		case Left:
			if head == 0 {
				return fmt.Errorf("tape: head moved left of cell 0 at pc %d", pc)
			}
			head--
		case Right:
			head++
			for head >= len(tape) {
				tape = append(tape, 0)
			}
		case Inc:
			tape[head]++
		case Dec:
			tape[head]--
		case In:
			b, err := reader.ReadByte()
			if err != nil {
				if err == io.EOF {
					return ErrNoInput
				}
				return err
			}
			tape[head] = b
		case Out:
			if _, err := out.Write(tape[head : head+1]); err != nil {
				return err
			}
		case LBrac:
			if tape[head] == 0 {
				pc = jumps[pc]
			}
		case RBrac:
			if tape[head] != 0 {
				pc = jumps[pc]
			}
		default:
			return fmt.Errorf("tape: unknown operator %q at pc %d", prog[pc], pc)
		}
		pc++
	}
	return nil
}

// matchBrackets precomputes, for every '[' and ']', the pc of its
// partner, so Run never has to rescan the program to find one.
func matchBrackets(prog Program) (map[int]int, error) {
	jumps := make(map[int]int)
	var stack []int
	for pc, op := range prog {
		switch op {
		case LBrac:
			stack = append(stack, pc)
		case RBrac:
			if len(stack) == 0 {
				return nil, fmt.Errorf("tape: unmatched ']' at pc %d", pc)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[open] = pc
			jumps[pc] = open
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("tape: unmatched '[' at pc %d", stack[len(stack)-1])
	}
	return jumps, nil
}
