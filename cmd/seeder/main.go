package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Seeds a running stockdesk API with demo vehicles and a few transfers so the
// dashboard has something to show. Points at API_URL, defaults to localhost.

type vehicle struct {
	VIN       string `json:"vin"`
	Car       string `json:"car"`
	Variant   string `json:"variant"`
	Dealer    string `json:"dealer"`
	ModelYear string `json:"modelYear"`
	ExtColor  string `json:"extColor"`
	IntColor  string `json:"intColor"`
	Location  string `json:"location"`
}

var catalogue = []struct {
	car      string
	variants []string
}{
	{"Land Cruiser", []string{"GXR", "VXR"}},
	{"Camry", []string{"SE", "XLE"}},
	{"Corolla", []string{"XLI", "GLI"}},
	{"Hilux", []string{"GL", "GLX"}},
	{"RAV4", []string{"LE", "Limited"}},
}

var extColors = []string{"White", "Black", "Silver", "Gray", "Red"}
var intColors = []string{"Black", "Beige"}

var sites = []string{
	"Warehouse",
	"Branch 1 Showroom",
	"Branch 2 Almultaqa",
	"Branch 3 Qadisiyah",
}

var authToken string

func authorizedRequest(method, url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func login(apiURL string) error {
	creds := map[string]string{
		"username": envOr("SEED_USERNAME", "admin"),
		"password": envOr("SEED_PASSWORD", "admin12345"),
	}

	// Try registering first; conflict means the account already exists.
	register := map[string]string{
		"username": creds["username"],
		"email":    "admin@stockdesk.local",
		"password": creds["password"],
		"name":     "Seeder Admin",
		"role":     "admin",
	}
	data, _ := json.Marshal(register)
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/api/auth/register", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	resp.Body.Close()

	data, _ = json.Marshal(creds)
	resp, err = authorizedRequest(http.MethodPost, apiURL+"/api/auth/login", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	authToken = result.Token
	return nil
}

func randomVIN() string {
	const alphabet = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"
	vin := make([]byte, 17)
	for i := range vin {
		vin[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(vin)
}

func seedVehicle(apiURL string) (string, error) {
	entry := catalogue[rand.Intn(len(catalogue))]
	v := vehicle{
		VIN:       randomVIN(),
		Car:       entry.car,
		Variant:   entry.variants[rand.Intn(len(entry.variants))],
		Dealer:    "MZJ Cars",
		ModelYear: fmt.Sprintf("%d", 2023+rand.Intn(3)),
		ExtColor:  extColors[rand.Intn(len(extColors))],
		IntColor:  intColors[rand.Intn(len(intColors))],
		Location:  "Warehouse : Available Stock",
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/api/stock/vehicles", bytes.NewBuffer(data))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("vehicle creation failed with status %d", resp.StatusCode)
	}

	log.WithFields(log.Fields{
		"vin": v.VIN,
		"car": v.Car,
	}).Info("Created vehicle")
	return v.VIN, nil
}

func transfer(apiURL string, vins []string, destination string) error {
	payload := map[string]interface{}{
		"vins":        vins,
		"destination": destination,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/api/stock/transfers", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transfer failed with status %d", resp.StatusCode)
	}

	log.WithFields(log.Fields{
		"vins":        len(vins),
		"destination": destination,
	}).Info("Transferred vehicles")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	apiURL := envOr("API_URL", "http://localhost:8080")
	count := 20

	if err := login(apiURL); err != nil {
		log.WithFields(log.Fields{"error": err}).Fatal("Failed to authenticate")
	}
	log.Info("Authenticated")

	vins := make([]string, 0, count)
	for i := 0; i < count; i++ {
		vin, err := seedVehicle(apiURL)
		if err != nil {
			log.WithFields(log.Fields{"error": err}).Error("Failed to create vehicle")
			continue
		}
		vins = append(vins, vin)
	}

	// Spread some of the stock across the branches.
	for i, vin := range vins {
		if i%3 == 0 {
			continue // leave a third in the warehouse
		}
		site := sites[1+rand.Intn(len(sites)-1)]
		if err := transfer(apiURL, []string{vin}, site+" : Available Stock"); err != nil {
			log.WithFields(log.Fields{"vin": vin, "error": err}).Error("Failed to transfer vehicle")
		}
	}

	// Put one car into the approval pipeline.
	if len(vins) > 0 {
		if err := transfer(apiURL, vins[:1], "Branch 1 Showroom : Sold - Pending Handover"); err != nil {
			log.WithFields(log.Fields{"error": err}).Error("Failed to create sold-pending move")
		}
	}

	log.WithFields(log.Fields{"vehicles": len(vins)}).Info("Seeding complete")
}
