//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"drive-json-publisher/cmd"
	"drive-json-publisher/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	output     bytes.Buffer
	err        error
}

func (c *configContext) aDefaultConfiguration() error {
	c.cfg = config.Default()
	return nil
}

func (c *configContext) iShowTheConfigKey(key string) error {
	c.output.Reset()
	c.err = cmd.RunConfigShowWithDependencies(c.cfg, c.configPath, key, &c.output)
	return nil
}

func (c *configContext) iSetTheConfigKeyTo(key, value string) error {
	c.output.Reset()
	c.err = cmd.RunConfigSetWithDependencies(c.cfg, c.configPath, key, value, &c.output)
	return nil
}

func (c *configContext) theOutputShouldContain(want string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	if !strings.Contains(c.output.String(), want) {
		return fmt.Errorf("expected output to contain %q, got %q", want, c.output.String())
	}
	return nil
}

func (c *configContext) theConfigCommandShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	return nil
}

func (c *configContext) theConfigCommandShouldFailWith(want string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error containing %q", want)
	}
	if !strings.Contains(c.err.Error(), want) {
		return fmt.Errorf("expected error containing %q, got %q", want, c.err.Error())
	}
	return nil
}

func (c *configContext) theSavedConfigShouldHaveSetTo(key, want string) error {
	loaded, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load saved config: %w", err)
	}
	got, err := config.NewConfigManager(loaded, c.configPath).Get(key)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s %q, got %q", key, want, got)
	}
	return nil
}

// InitializeConfigScenario registers the config command steps
func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	c := &configContext{}

	ctx.Before(func(bg context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return bg, err
		}
		*c = configContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
		}
		return bg, nil
	})

	ctx.After(func(bg context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if c.tempDir != "" {
			os.RemoveAll(c.tempDir)
		}
		return bg, nil
	})

	ctx.Step(`^a default configuration$`, c.aDefaultConfiguration)
	ctx.Step(`^I show the config key "([^"]*)"$`, c.iShowTheConfigKey)
	ctx.Step(`^I set the config key "([^"]*)" to "([^"]*)"$`, c.iSetTheConfigKeyTo)
	ctx.Step(`^the output should contain "([^"]*)"$`, c.theOutputShouldContain)
	ctx.Step(`^the config command should succeed$`, c.theConfigCommandShouldSucceed)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, c.theConfigCommandShouldFailWith)
	ctx.Step(`^the saved config should have "([^"]*)" set to "([^"]*)"$`, c.theSavedConfigShouldHaveSetTo)
}
