package core

type (
	// Logger is any service that can report app events.
	// expected args fmt: error | map[string]interface{} | Actor
	Logger interface {
		Debug(msg string, args ...interface{})
		Info(msg string, args ...interface{})
		Warn(msg string, args ...interface{})
		Error(msg string, args ...interface{})
		Fatal(msg string, args ...interface{})
	}

	// Actor identifies who triggered a logged event (learner, officer, admin).
	Actor struct {
		ID    string
		Name  string
		Email string
	}
)
