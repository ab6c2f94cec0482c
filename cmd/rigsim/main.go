// Package main is a demo driver for the rig simulator: it assembles the
// sample three-axis rig and runs a scripted jog, tune, and move sequence
// with periodic state printout.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/axisforge/rigsim/rig"
)

var logger = golog.NewDevelopmentLogger("rigsim")

func main() {
	app := &cli.App{
		Name:  "rigsim",
		Usage: "motion-controlled rotary rig simulator",
		Commands: []*cli.Command{
			{
				Name:  "demo",
				Usage: "run a scripted jog and move sequence on the sample three-axis rig",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "speed",
						Value: 180,
						Usage: "max joint speed in degrees per second",
					},
					&cli.Float64Flag{
						Name:  "acceleration",
						Value: 360,
						Usage: "joint acceleration in degrees per second squared",
					},
					&cli.DurationFlag{
						Name:  "jog",
						Value: time.Second,
						Usage: "how long to jog the shoulder before the move sequence",
					},
				},
				Action: runDemo,
			},
			{
				Name:   "describe",
				Usage:  "print the sample rig's scene definition and initial state as JSON",
				Action: describe,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func runDemo(c *cli.Context) error {
	ctx := c.Context
	r, err := rig.New(rig.ThreeAxisConfig(), logger)
	if err != nil {
		return err
	}
	defer func() {
		goutils.UncheckedError(r.Close(context.Background()))
	}()

	for _, name := range r.AxisNames() {
		ax, err := r.Axis(name)
		if err != nil {
			return err
		}
		if err := ax.SetSpeed(c.Float64("speed")); err != nil {
			return err
		}
		if err := ax.SetAcceleration(c.Float64("acceleration")); err != nil {
			return err
		}
	}

	shoulder, err := r.Axis("shoulder")
	if err != nil {
		return err
	}

	logger.Infow("jogging shoulder clockwise", "duration", c.Duration("jog"))
	shoulder.JogCW()
	if !goutils.SelectContextOrWait(ctx, c.Duration("jog")) {
		return ctx.Err()
	}
	shoulder.JogStop()
	logger.Infow("jog stopped", "position", shoulder.Position())

	moves := []struct {
		joint  string
		target float64
	}{
		{"shoulder", 45},
		{"elbow", 330},
		{"wrist", 15},
		{"shoulder", 0},
	}
	for _, mv := range moves {
		ax, err := r.Axis(mv.joint)
		if err != nil {
			return err
		}
		logger.Infow("moving", "joint", mv.joint, "target", mv.target)
		ax.SetAbsolutePosition(mv.target)
		for !ax.WaitForMove(ctx, 250*time.Millisecond) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			status, err := r.JointStatus(mv.joint)
			if err != nil {
				return err
			}
			logger.Infow("in flight",
				"joint", mv.joint,
				"position", ax.Position(),
				"speed", status.Speed,
				"state", status.State,
			)
		}
		tf, err := r.WorldTransform("end_effector")
		if err != nil {
			return err
		}
		logger.Infow("arrived",
			"joint", mv.joint,
			"position", ax.Position(),
			"end_effector", tf.Position,
		)
	}
	return nil
}

func describe(c *cli.Context) error {
	r, err := rig.New(rig.ThreeAxisConfig(), logger)
	if err != nil {
		return err
	}
	defer func() {
		goutils.UncheckedError(r.Close(context.Background()))
	}()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.StaticDefinition()); err != nil {
		return err
	}
	return enc.Encode(r.State())
}
