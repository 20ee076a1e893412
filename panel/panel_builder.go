package panel

import "io"

// PanelBuilderOption is a functional option for configuring a Panel.
type PanelBuilderOption func(*panel)

// WithAddr sets the listen address. The default is 127.0.0.1:8089.
func WithAddr(addr string) PanelBuilderOption {
	return func(p *panel) {
		if addr != "" {
			p.addr = addr
		}
	}
}

// WithAccessLog sets where request logs are written. The default is os.Stdout.
func WithAccessLog(w io.Writer) PanelBuilderOption {
	return func(p *panel) {
		p.accessLog = w
	}
}

// WithActionBuffer sets how many actions may wait for the frame loop before requests are refused. The default is 64.
func WithActionBuffer(n int) PanelBuilderOption {
	return func(p *panel) {
		if n > 0 {
			p.actionBuffer = n
		}
	}
}
