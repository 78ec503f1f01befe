package main

import (
	"time"

	"github.com/shaiso/Dashboard/internal/dashboard"
	"github.com/shaiso/Dashboard/internal/sendable"
)

// registerDemoWidgets регистрирует набор виджетов для проверки
// dashboard без подключённого робота.
func registerDemoWidgets(d *dashboard.Dashboard) error {
	auto := sendable.NewChooser[string]()
	auto.AddOption("Drive Forward", "drive")
	auto.AddOption("Score and Balance", "balance")
	auto.SetDefaultOption("Do Nothing", "none")

	accel := sendable.NewAccelerometer("BuiltInAccel", sendable.NewSimAccel())
	started := time.Now()

	if err := d.PutData("Autonomous Mode", auto); err != nil {
		return err
	}
	for _, w := range []sendable.Named{
		accel,
		sendable.NewToggle("Claw"),
		sendable.NewNumber("Uptime", func() float64 { return time.Since(started).Seconds() }),
		sendable.NewText("Auto Selected", auto.SelectedName),
	} {
		if err := d.PutNamedData(w); err != nil {
			return err
		}
	}

	_, err := d.SetDefaultNumber("Drive Speed", 0.5)
	return err
}
