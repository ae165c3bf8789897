package tutor

import "time"

// Config holds generation and dispatch settings for the tutor collaborators.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Workers and QueueSize bound the async dispatcher. Requests beyond a
	// full queue are dropped.
	Workers   int
	QueueSize int

	// Timeout bounds one collaborator call made by the dispatcher.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for tutor generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.4,
		Workers:     2,
		QueueSize:   32,
		Timeout:     90 * time.Second,
	}
}
