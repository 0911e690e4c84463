package httpapi

// Config defines the plain view and JSON API settings.
type Config struct {
	Addr     string
	BasePath string
	// Title heads the plain page.
	Title string
	// SSHCommand, when set, is shown on the plain page as the way into the
	// terminal.
	SSHCommand string
}
