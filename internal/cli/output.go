package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zn-har/Bingo/internal/api/response"
	"github.com/zn-har/Bingo/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.RegisterResponse:
		o.printRegister(v)
	case response.Board:
		o.printBoard(v)
	case []response.Scan:
		o.printScans(v)
	case response.Scan:
		o.printScans([]response.Scan{v})
	case response.ScanResult:
		o.printScanResult(v)
	case response.GameState:
		o.printGameState(v)
	case []response.Winner:
		o.printWinners(v)
	case []response.Task:
		o.printTasks(v)
	case response.Health:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printPlayer(p response.Player) {
	o.printf("Player: %s (%s)\n", p.Name, p.ID)
	o.printf("Phone: %s\n", p.Phone)
	o.printf("Registered: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
}

func (o *Output) printRegister(r response.RegisterResponse) {
	if r.Created {
		o.printf("Registered new player\n")
	} else {
		o.printf("Phone already registered, welcome back\n")
	}
	o.printPlayer(r.Player)
}

// printBoard draws the grid in display order: X done, * free, . open
func (o *Output) printBoard(b response.Board) {
	o.printf("Board for %s\n", b.PlayerID)
	for row := 0; row < model.BoardSize; row++ {
		marks := make([]string, 0, model.BoardSize)
		for col := 0; col < model.BoardSize; col++ {
			i := row*model.BoardSize + col
			if i >= len(b.Cells) {
				break
			}
			switch c := b.Cells[i]; {
			case c.IsFreeSpace:
				marks = append(marks, "*")
			case c.Completed:
				marks = append(marks, "X")
			default:
				marks = append(marks, ".")
			}
		}
		o.printf("  %s\n", strings.Join(marks, " "))
	}

	o.printf("\nLines: %d\n", b.Progress.CompletedLines)
	if len(b.Progress.WinTypes) > 0 {
		o.printf("Wins: %s\n", strings.Join(b.Progress.WinTypes, ", "))
	}

	o.printf("\nTasks:\n")
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	for _, c := range b.Cells {
		status := " "
		if c.Completed {
			status = "x"
		}
		_, _ = fmt.Fprintf(tw, "  [%s]\t%d\t#%d\t%s\n", status, c.Position, c.TaskID, c.Description)
	}
	_ = tw.Flush()
}

func (o *Output) printScans(scans []response.Scan) {
	if len(scans) == 0 {
		o.printf("No scans\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTASK\tTARGET\tSTATUS\tTIME")
	for _, s := range scans {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
			s.ID, s.TaskID, s.TargetID, s.Status, s.Timestamp.Format("2006-01-02 15:04:05"))
	}
	_ = tw.Flush()
}

func (o *Output) printScanResult(r response.ScanResult) {
	o.printf("Scan %d accepted: %s scanned %s for %q\n",
		r.Scan.ID, r.ScannerName, r.TargetName, r.TaskDescription)
	o.printf("Completed lines: %d\n", r.Progress.CompletedLines)
	if len(r.NewWins) > 0 {
		o.printf("BINGO! New wins: %s\n", strings.Join(r.NewWins, ", "))
	}
	if !r.GameActive {
		o.printf("The game has ended (%d winners)\n", r.WinnerCount)
	}
}

func (o *Output) printGameState(g response.GameState) {
	state := "active"
	if !g.GameActive {
		state = "ended"
	}
	o.printf("Game: %s\n", state)
	o.printf("Winners: %d/%d\n", g.WinnerCount, g.MaxWinners)
	o.printf("Duplicate targets allowed: %t\n", g.AllowDuplicateTargets)
}

func (o *Output) printWinners(winners []response.Winner) {
	if len(winners) == 0 {
		o.printf("No winners yet\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PLAYER\tWIN\tTIME")
	for _, w := range winners {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", w.PlayerName, w.WinType, w.WonAt.Format("2006-01-02 15:04:05"))
	}
	_ = tw.Flush()
}

func (o *Output) printTasks(tasks []response.Task) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tPOS\tDESCRIPTION")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\n", t.ID, t.Position, t.Description)
	}
	_ = tw.Flush()
}
