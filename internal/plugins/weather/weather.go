// Package weather provides current-conditions lookups backed by
// weatherapi.com.
package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type Plugin struct {
	apiKey string
	client *http.Client

	mu     sync.RWMutex
	active bool
}

func New(apiKey string) *Plugin {
	return &Plugin{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *Plugin) Name() string        { return "weather" }
func (p *Plugin) Description() string { return "Current weather information from weatherapi.com" }

func (p *Plugin) Commands() map[string]string {
	return map[string]string{
		"weather":      "Get current weather for a location (usage: /weather Cairo)",
		"weather_info": "Show weather plugin provider info",
	}
}

func (p *Plugin) AllowedRoles() []string { return []string{"all"} }

func (p *Plugin) Activate() error {
	if p.apiKey == "" {
		return errors.New("weather API key not configured")
	}
	p.mu.Lock()
	p.active = true
	p.mu.Unlock()
	return nil
}

func (p *Plugin) Deactivate() {
	p.mu.Lock()
	p.active = false
	p.mu.Unlock()
}

func (p *Plugin) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

func (p *Plugin) HandleCommand(command string, args []string, userID int64, role string) (string, error) {
	switch command {
	case "weather_info":
		return p.info(), nil
	case "weather":
		return p.currentWeather(args)
	}
	return fmt.Sprintf("❌ Unknown weather command: %s", command), nil
}

func (p *Plugin) info() string {
	status := "❌ Inactive"
	if p.Active() {
		status = "✅ Active"
	}
	return fmt.Sprintf("🌤 *Weather Plugin Info*\nProvider: weatherapi.com\nStatus: %s", status)
}

type weatherResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		FeelsLike float64 `json:"feelslike_c"`
		Humidity  int     `json:"humidity"`
		WindKph   float64 `json:"wind_kph"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (p *Plugin) currentWeather(args []string) (string, error) {
	if len(args) == 0 {
		return "💬 Please provide a location. Usage: /weather Cairo", nil
	}
	location := strings.Join(args, " ")

	endpoint := fmt.Sprintf("https://api.weatherapi.com/v1/current.json?key=%s&q=%s",
		url.QueryEscape(p.apiKey), url.QueryEscape(location))
	resp, err := p.client.Get(endpoint)
	if err != nil {
		return "", fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return fmt.Sprintf("🌍 Location %q not found.", location), nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather request: unexpected status %d", resp.StatusCode)
	}

	var data weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("weather response: %w", err)
	}

	return fmt.Sprintf(
		"🌤 *Weather in %s, %s*\n%s\n🌡 %.1f°C (feels like %.1f°C)\n💧 Humidity: %d%%\n🌬 Wind: %.0f km/h",
		data.Location.Name, data.Location.Country,
		data.Current.Condition.Text,
		data.Current.TempC, data.Current.FeelsLike,
		data.Current.Humidity, data.Current.WindKph,
	), nil
}
