package bootstrap

import "fmt"

// ExitCode 進程退出碼，是對外部啟動器/安裝器的可觀察契約
type ExitCode int

const (
	ExitSuccess          ExitCode = 0x0   // ERROR_SUCCESS
	ExitCancelled        ExitCode = 0x4C7 // ERROR_CANCELLED
	ExitPrivilegeNotHeld ExitCode = 0x521 // ERROR_PRIVILEGE_NOT_HELD
	ExitFailure          ExitCode = -1
)

func (c ExitCode) String() string {
	switch c {
	case ExitSuccess:
		return "ERROR_SUCCESS"
	case ExitCancelled:
		return "ERROR_CANCELLED"
	case ExitPrivilegeNotHeld:
		return "ERROR_PRIVILEGE_NOT_HELD"
	case ExitFailure:
		return "FAILURE"
	default:
		return fmt.Sprintf("EXIT(%d)", int(c))
	}
}

// Outcome 狀態機的終態類型
type Outcome int

const (
	OutcomeLaunchGUI Outcome = iota
	OutcomeExitCancelled
	OutcomeExitError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLaunchGUI:
		return "LaunchGUI"
	case OutcomeExitCancelled:
		return "ExitCancelled"
	case OutcomeExitError:
		return "ExitError"
	default:
		return "Unknown"
	}
}

// Result 一次啟動流程的唯一終態
type Result struct {
	Outcome Outcome
	Code    ExitCode
	State   State // 產生終態的狀態
	Err     error
}

func LaunchGUI() Result {
	return Result{Outcome: OutcomeLaunchGUI, Code: ExitSuccess, State: StateLaunch}
}

func Cancelled(state State) Result {
	return Result{Outcome: OutcomeExitCancelled, Code: ExitCancelled, State: state}
}

func Failed(state State, code ExitCode, err error) Result {
	return Result{Outcome: OutcomeExitError, Code: code, State: state, Err: err}
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s(%s) at %s: %v", r.Outcome, r.Code, r.State, r.Err)
	}
	return fmt.Sprintf("%s(%s) at %s", r.Outcome, r.Code, r.State)
}
