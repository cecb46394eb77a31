package stage

import "fmt"

// Health is a stage's answer to "can you run right now".
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports a stage as ready.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports a stage that cannot run, with the reason.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}

// Err returns nil for a ready stage and a descriptive error otherwise.
func (h Health) Err() error {
	if h.Ready {
		return nil
	}
	if h.Detail == "" {
		return fmt.Errorf("stage %s not ready", h.Name)
	}
	return fmt.Errorf("stage %s not ready: %s", h.Name, h.Detail)
}
