// Package passgage is the client SDK facade for the Passgage access platform.
// It owns the session lifecycle (login, refresh, logout) and exposes every
// operation with a uniform result shape so callers branch on Success only and
// never handle transport errors or token expiry themselves.
package passgage

// Result is the uniform outcome of every facade operation. Exactly one of
// Data and Error is meaningful, gated by Success.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func fail[T any](message string) Result[T] {
	return Result[T]{Success: false, Error: message}
}

// Named instantiations, one per operation family.
type (
	// LoginResult is returned by Login.
	LoginResult = Result[*LoginData]
	// LogoutResult is returned by Logout.
	LogoutResult = Result[struct{}]
	// ProfileResult is returned by Profile.
	ProfileResult = Result[*User]
	// ScanResult is returned by ValidateQR and ValidateNFC.
	ScanResult = Result[*Scan]
	// BranchListResult is returned by NearbyBranches.
	BranchListResult = Result[[]Branch]
	// CheckInResult is returned by CheckInEntry and CheckInExit.
	CheckInResult = Result[*Entrance]
	// WorkLogResult is returned by LogWorkEntry and LogWorkExit.
	WorkLogResult = Result[*WorkLogRecord]
)
