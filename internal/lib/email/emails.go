package email

// SendWelcomeEmail greets a newly registered user.
func (c *Client) SendWelcomeEmail(to, dashboardURL string) error {
	return c.SendEmail(
		to,
		"Welcome to Storymap!",
		TemplateWelcome,
		map[string]string{
			"UserName":     to,
			"DashboardURL": dashboardURL,
		},
	)
}
