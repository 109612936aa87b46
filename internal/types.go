package internal

import "time"

// RunRecord describes one filtering run as stored in the history database.
type RunRecord struct {
	ID         string    `json:"id"`
	InputFile  string    `json:"input_file"`
	OutputFile string    `json:"output_file"`
	Endpoint   string    `json:"endpoint"`
	Policy     string    `json:"policy"`
	Total      int       `json:"total"`
	Timestamp  time.Time `json:"timestamp"`
}
