package browser

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// killCommand returns the command that kills pid together with its
// children on goos. Chrome helpers (GPU, renderer, crashpad) outlive a
// plain Kill of the parent.
func killCommand(goos string, pid int) []string {
	if goos == "windows" {
		return []string{"taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)}
	}
	// chromedp starts Chrome in its own process group, so the group ID is
	// the parent PID and a negative PID reaches every member.
	return []string{"kill", "-9", "--", "-" + strconv.Itoa(pid)}
}

// killProcessTree force-kills proc and its children, falling back to
// killing proc alone.
func killProcessTree(proc *os.Process) {
	if proc == nil {
		return
	}
	args := killCommand(runtime.GOOS, proc.Pid)
	if err := exec.Command(args[0], args[1:]...).Run(); err != nil {
		_ = proc.Kill()
	}
}
