// aampctl is a small command line tool over the aamp library, mostly
// useful for poking at an Audio Manager Pro server while developing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/peterbourgon/ff/v3"
	"gopkg.in/yaml.v3"

	"github.com/strefethen/aamp-go/pkg/aamp"
	"github.com/strefethen/aamp-go/pkg/aamp/unofficial"
)

// fileConfig mirrors the connection flags for the optional -config
// YAML file. Flags and AAMP_* environment variables win over the file.
type fileConfig struct {
	BaseURL     string `yaml:"baseUrl"`
	APIUsername string `yaml:"apiUsername"`
	APIPassword string `yaml:"apiPassword"`
	WebUsername string `yaml:"webUsername"`
	WebPassword string `yaml:"webPassword"`
	VerifyTLS   bool   `yaml:"verifyTls"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("aampctl", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "optional yaml file with connection settings")
		baseURL    = fs.String("url", "", "base url of the audio manager server")
		apiUser    = fs.String("api-user", "", "official api username")
		apiPass    = fs.String("api-pass", "", "official api password")
		webUser    = fs.String("web-user", "", "web interface username (enables unofficial features)")
		webPass    = fs.String("web-pass", "", "web interface password")
		verifyTLS  = fs.Bool("verify-tls", false, "verify the server certificate")
		timeout    = fs.Duration("timeout", 15*time.Second, "per-request timeout")
		cmd        = fs.String("cmd", "targets", "targets | zones | devices | hardware | files | play | volumes | set-volume | assign | ding")
		target     = fs.String("target", "", "target id, e.g. zon_5 or dev_10")
		file       = fs.String("file", "", "audio file id for -cmd play")
		offset     = fs.Int("offset", 0, "gain offset for -cmd set-volume")
		zone       = fs.String("zone", "", "zone id for -cmd assign")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("AAMP")); err != nil {
		return err
	}

	cfg := aamp.Config{
		BaseURL:     *baseURL,
		APIUsername: *apiUser,
		APIPassword: *apiPass,
		WebUsername: *webUser,
		WebPassword: *webPass,
		VerifyTLS:   *verifyTLS,
		Timeout:     *timeout,
	}
	if *configPath != "" {
		if err := mergeFileConfig(*configPath, &cfg); err != nil {
			return err
		}
	}

	mgr, err := aamp.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch *cmd {
	case "targets":
		return printTargets(ctx, mgr)
	case "zones":
		return printZones(ctx, mgr)
	case "devices":
		return printDevices(ctx, mgr)
	case "hardware":
		return printHardware(ctx, mgr)
	case "files":
		return printFiles(ctx, mgr)
	case "play":
		return playFile(ctx, mgr, *target, *file)
	case "volumes":
		return printVolumes(ctx, mgr, *target)
	case "set-volume":
		return setVolume(ctx, mgr, *target, *offset)
	case "assign":
		return assignDevice(ctx, mgr, *target, *zone)
	case "ding":
		return ding(ctx, mgr, *target)
	default:
		return fmt.Errorf("unknown command %q", *cmd)
	}
}

// mergeFileConfig fills in connection settings the flags left blank.
func mergeFileConfig(path string, cfg *aamp.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fc.BaseURL
	}
	if cfg.APIUsername == "" {
		cfg.APIUsername = fc.APIUsername
	}
	if cfg.APIPassword == "" {
		cfg.APIPassword = fc.APIPassword
	}
	if cfg.WebUsername == "" {
		cfg.WebUsername = fc.WebUsername
	}
	if cfg.WebPassword == "" {
		cfg.WebPassword = fc.WebPassword
	}
	if fc.VerifyTLS {
		cfg.VerifyTLS = true
	}
	return nil
}

func printTargets(ctx context.Context, mgr *aamp.Manager) error {
	targets, err := mgr.AudioTargets(ctx)
	if err != nil {
		return err
	}
	for _, t := range targets {
		fmt.Printf("%-10s %-14s enabled=%-5v %-12s %s\n", t.ID(), t.TargetType(), t.Enabled(), t.Status(), t.Name())
	}
	return nil
}

func printZones(ctx context.Context, mgr *aamp.Manager) error {
	zones, err := mgr.AudioZones(ctx)
	if err != nil {
		return err
	}
	for _, z := range zones {
		fmt.Printf("%-10s enabled=%-5v %s\n", z.ID(), z.Enabled(), z.Name())
	}
	return nil
}

func printDevices(ctx context.Context, mgr *aamp.Manager) error {
	devices, err := mgr.AudioDevices(ctx)
	if err != nil {
		return err
	}
	for _, d := range devices {
		fmt.Printf("%-10s enabled=%-5v %s\n", d.ID(), d.Enabled(), d.Name())
	}
	return nil
}

func printHardware(ctx context.Context, mgr *aamp.Manager) error {
	records, err := mgr.Devices(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no hardware info available")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%-20s %-16s %-17s fw %s\n", rec.ProductName, rec.IPAddress, rec.MAC, rec.FWVersion)
	}
	return nil
}

func printFiles(ctx context.Context, mgr *aamp.Manager) error {
	files, err := mgr.Official().ListAudioFiles(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("%-10s %8d  %s\n", f.ID, f.Size, f.NiceName)
	}
	return nil
}

func playFile(ctx context.Context, mgr *aamp.Manager, targetID, fileID string) error {
	if targetID == "" || fileID == "" {
		return fmt.Errorf("play needs -target and -file")
	}
	target, err := findTarget(ctx, mgr, targetID)
	if err != nil {
		return err
	}
	sessionID, err := target.PlayAudioFile(ctx, fileID)
	if err != nil {
		return err
	}
	fmt.Printf("session %s\n", sessionID)
	return nil
}

func printVolumes(ctx context.Context, mgr *aamp.Manager, targetID string) error {
	target, err := findTarget(ctx, mgr, targetID)
	if err != nil {
		return err
	}
	calibratable, ok := target.(interface {
		VolumeCalibration(context.Context) (map[unofficial.Category]unofficial.Volume, error)
	})
	if !ok {
		return fmt.Errorf("target %s has no volume calibration", targetID)
	}
	volumes, err := calibratable.VolumeCalibration(ctx)
	if err != nil {
		return err
	}
	for category, volume := range volumes {
		fmt.Printf("%-14s %d\n", category, volume.DefaultGainOffset)
	}
	return nil
}

func setVolume(ctx context.Context, mgr *aamp.Manager, targetID string, offset int) error {
	target, err := findTarget(ctx, mgr, targetID)
	if err != nil {
		return err
	}
	calibratable, ok := target.(interface {
		SetVolumeCalibration(context.Context, int) (bool, error)
	})
	if !ok {
		return fmt.Errorf("target %s has no volume calibration", targetID)
	}
	applied, err := calibratable.SetVolumeCalibration(ctx, offset)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("server rejected one or more volume updates")
	}
	fmt.Println("ok")
	return nil
}

func assignDevice(ctx context.Context, mgr *aamp.Manager, targetID, zoneID string) error {
	if targetID == "" || zoneID == "" {
		return fmt.Errorf("assign needs -target and -zone")
	}
	device, err := findDevice(ctx, mgr, targetID)
	if err != nil {
		return err
	}
	ok, err := device.AssignToZoneID(ctx, zoneID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("server rejected the assignment")
	}
	if err := mgr.RefreshDevices(ctx); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func ding(ctx context.Context, mgr *aamp.Manager, targetID string) error {
	device, err := findDevice(ctx, mgr, targetID)
	if err != nil {
		return err
	}
	ok, err := device.Ding(ctx, 0)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("server did not start the test tone")
	}
	return nil
}

func findTarget(ctx context.Context, mgr *aamp.Manager, id string) (aamp.Target, error) {
	if id == "" {
		return nil, fmt.Errorf("a -target id is required")
	}
	targets, err := mgr.AudioTargets(ctx)
	if err != nil {
		return nil, err
	}
	for _, target := range targets {
		if target.ID() == id {
			return target, nil
		}
	}
	return nil, fmt.Errorf("target %s not found", id)
}

func findDevice(ctx context.Context, mgr *aamp.Manager, id string) (*aamp.Device, error) {
	target, err := findTarget(ctx, mgr, id)
	if err != nil {
		return nil, err
	}
	device, ok := target.(*aamp.Device)
	if !ok {
		return nil, fmt.Errorf("target %s is not a device", id)
	}
	return device, nil
}
