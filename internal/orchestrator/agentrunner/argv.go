package agentrunner

import "fmt"

// BuildCodexArgv mirrors run_codex_turn_streamed_via_cli's argument
// construction: sandbox flags first, then the worktree, optional image
// attachments, optional model/effort overrides, and finally either
// "resume <id> -" or a bare "-" to read the prompt from stdin.
func BuildCodexArgv(p Params) []string {
	argv := []string{
		"--sandbox", "danger-full-access",
		"--ask-for-approval", "never",
		"--search",
		"exec", "--json",
		"-C", p.WorktreePath,
	}

	if len(p.ImagePaths) > 0 {
		argv = append(argv, "--image")
		argv = append(argv, p.ImagePaths...)
	}
	if p.Model != "" {
		argv = append(argv, "--model", p.Model)
	}
	if p.ThinkingEffort != "" {
		argv = append(argv, "-c", fmt.Sprintf("model_reasoning_effort=%q", p.ThinkingEffort))
	}

	if p.ResumeThreadID != "" {
		argv = append(argv, "resume", p.ResumeThreadID, "-")
	} else {
		argv = append(argv, "-")
	}
	return argv
}

// BuildAmpArgv builds the Amp CLI invocation. Amp takes mode as a flag
// rather than a subcommand and has no separate resume verb: resuming a
// thread is simply passing its id as --thread.
func BuildAmpArgv(p Params, mode string) []string {
	argv := []string{"--json", "-C", p.WorktreePath}
	if mode != "" {
		argv = append(argv, "--mode", mode)
	}
	if p.Model != "" {
		argv = append(argv, "--model", p.Model)
	}
	if p.ResumeThreadID != "" {
		argv = append(argv, "--thread", p.ResumeThreadID)
	}
	argv = append(argv, "-")
	return argv
}

// BuildClaudeArgv builds the Claude Code CLI invocation.
func BuildClaudeArgv(p Params) []string {
	argv := []string{"--output-format", "stream-json", "--cwd", p.WorktreePath}
	if p.Model != "" {
		argv = append(argv, "--model", p.Model)
	}
	if p.ResumeThreadID != "" {
		argv = append(argv, "--resume", p.ResumeThreadID)
	}
	argv = append(argv, "-p", "-")
	return argv
}

// BuildDroidArgv builds the Droid CLI invocation.
func BuildDroidArgv(p Params) []string {
	argv := []string{"exec", "--json", "--cwd", p.WorktreePath}
	if p.Model != "" {
		argv = append(argv, "--model", p.Model)
	}
	if p.ResumeThreadID != "" {
		argv = append(argv, "--session", p.ResumeThreadID)
	}
	argv = append(argv, "-")
	return argv
}
