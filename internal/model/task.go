package model

// TaskID uniquely identifies a task
type TaskID int64

// Task is one of the 25 festival challenges, bound to a canonical board position
type Task struct {
	ID          TaskID
	Description string
	Position    int // canonical position in [0, BoardCells), unique
}

// FreeSpaceDescription is the description used for the free cell in the default task set
const FreeSpaceDescription = "FREE SPACE"

// defaultTaskDescriptions holds the festival's default task set, indexed by canonical position
var defaultTaskDescriptions = [BoardCells]string{
	"Meet a Photographer",
	"Secret DJ Booth",
	"College Founder?",
	"1v1 Win",
	"Yellow Shirt Spot",
	"Volunteer High-five",
	"Visit Tech Lab",
	"First Fest Year",
	"Obstacle Course",
	"Mascot Selfie",
	"Find a Senior",
	"Food Court Check-in",
	FreeSpaceDescription,
	"Karaoke Hit",
	"Blue Pen Quest",
	"Spot the Dean",
	"Hidden Alley",
	"First Principal?",
	"Dance Battle",
	"Festival Merch",
	"Join a Flashmob",
	"Library Visit",
	"Mascot Name",
	"Robotics Demo",
	"Scan Final Poster",
}

// DefaultTasks returns the default task set with positions filled in and IDs unset
func DefaultTasks() []*Task {
	tasks := make([]*Task, 0, BoardCells)
	for pos, desc := range defaultTaskDescriptions {
		tasks = append(tasks, &Task{Description: desc, Position: pos})
	}
	return tasks
}
