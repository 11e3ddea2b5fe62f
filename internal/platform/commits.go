package platform

import "strings"

// Change types for change reasons, following Conventional Commits.
const (
	ChangeTypeFeat     = "feat"
	ChangeTypeFix      = "fix"
	ChangeTypeDocs     = "docs"
	ChangeTypeStyle    = "style"
	ChangeTypeRefactor = "refactor"
	ChangeTypeChore    = "chore"
)

// Footer marks commits written by lattice.
const Footer = "Powered-by: Lattice"

// FormatChangeReason builds the commit message stored with a save:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Powered-by: Lattice
func FormatChangeReason(ctype, scope, subject, body string) string {
	var sb strings.Builder
	if ctype == "" {
		ctype = ChangeTypeChore
	}
	sb.WriteString(ctype)
	if scope != "" {
		sb.WriteString("(" + scope + ")")
	}
	sb.WriteString(": ")
	sb.WriteString(subject)
	if body = strings.TrimSpace(body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}
	sb.WriteString("\n\n")
	sb.WriteString(Footer)
	return sb.String()
}

// AppendFooter appends Footer to a free-form message if not present.
func AppendFooter(msg string) string {
	if strings.Contains(msg, Footer) {
		return msg
	}
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if !strings.HasSuffix(msg, "\n\n") {
		msg += "\n"
	}
	return msg + Footer
}
