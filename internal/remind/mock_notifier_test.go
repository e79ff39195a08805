package remind

type mockNotifier struct {
	called    bool
	emails    []string
	arenas    map[string][]string
	threshold int
	err       error
}

func (m *mockNotifier) SendReminder(email string, arenas []string, hoursTillExpiry int) error {
	m.called = true
	m.emails = append(m.emails, email)
	if m.arenas == nil {
		m.arenas = map[string][]string{}
	}
	m.arenas[email] = arenas
	m.threshold = hoursTillExpiry
	return m.err
}
