package store

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("PANDORA_CONFIG_DIR", cfgDir)
	t.Setenv("PANDORA_API_BASE", "")
	t.Setenv("PANDORA_USE_API", "")

	seed := &Config{Mode: ModeAPI, Features: map[string]string{"journal": ModeMock}}
	if err := SaveConfig(seed); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const n = 64
	errCh := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			cfg, err := ReadConfigFile()
			if err != nil {
				errCh <- err
				return
			}
			if cfg.Features == nil {
				cfg.Features = map[string]string{}
			}
			cfg.Features["stats"] = ModeName(i%2 == 0)
			cfg.APIBase = fmt.Sprintf("http://backend-%d:8080", i)

			if err := SaveConfig(cfg); err != nil {
				errCh <- err
				return
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent SaveConfig: %v", err)
	}
	if t.Failed() {
		return
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config.yaml: %v", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("config.yaml corrupted/unparseable: %v\nraw:\n%s", err, string(raw))
	}
	if !strings.HasPrefix(cfg.APIBase, "http://backend-") {
		t.Fatalf("apiBase: got %q", cfg.APIBase)
	}

	ents, err := os.ReadDir(cfgDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, "config.yaml.") && strings.HasSuffix(name, ".tmp") {
			t.Fatalf("leftover temp file: %s", name)
		}
	}

	if bak, err := os.ReadFile(path + ".bak"); err == nil && len(bak) > 0 {
		var bakCfg Config
		if err := yaml.Unmarshal(bak, &bakCfg); err != nil {
			t.Fatalf("config.yaml.bak corrupted/unparseable: %v\nraw:\n%s", err, string(bak))
		}
	}
}
