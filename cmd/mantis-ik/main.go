// Package main is the mantis-ik command: offline IK solves, forward kinematics and joint tables
// for the Mantis arms.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	_ "github.com/BlueWorm-EAI-Tech/Mantis-SDK/ik/slsqp"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
)

const (
	flagConfig   = "config"
	flagDebug    = "debug"
	flagSide     = "side"
	flagRelative = "relative"
	flagJoints   = "joints"
	flagSolver   = "solver"
	flagSerial   = "serial"
)

func main() {
	logger := logging.NewLogger("mantis-ik")
	if err := newApp(logger).Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp(logger logging.Logger) *cli.App {
	poseFlags := []cli.Flag{
		&cli.Float64Flag{Name: "x", Usage: "x in meters"},
		&cli.Float64Flag{Name: "y", Usage: "y in meters"},
		&cli.Float64Flag{Name: "z", Usage: "z in meters"},
		&cli.Float64Flag{Name: "roll", Usage: "roll in radians"},
		&cli.Float64Flag{Name: "pitch", Usage: "pitch in radians"},
		&cli.Float64Flag{Name: "yaw", Usage: "yaw in radians"},
	}
	jointsFlag := &cli.Float64SliceFlag{
		Name:  flagJoints,
		Usage: "starting joint vector in model order, 14 values; defaults to the neutral pose",
	}

	return &cli.App{
		Name:  "mantis-ik",
		Usage: "dual-arm inverse kinematics for the Mantis robot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagConfig,
				Usage: "JSON robot config; defaults to the embedded Mantis model",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "log solver progress",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "solve",
				Usage:     "solve IK for one hand target in the marker frame",
				UsageText: "mantis-ik solve --side left --x 0 --y 0.5 --z 0 [--relative]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: flagSide, Value: "left", Usage: "left or right"},
					&cli.BoolFlag{Name: flagRelative, Usage: "treat the pose as a delta on the current target"},
					&cli.StringFlag{Name: flagSolver, Usage: "minimizer backend, overrides the config"},
					&cli.BoolFlag{Name: flagSerial, Usage: "print joints in the serial convention"},
					jointsFlag,
				}, poseFlags...),
				Action: func(c *cli.Context) error {
					return solveAction(c, logger)
				},
			},
			{
				Name:      "fk",
				Usage:     "print both hand poses in the marker frame",
				UsageText: "mantis-ik fk [--joints q0,q1,...]",
				Flags:     []cli.Flag{jointsFlag},
				Action: func(c *cli.Context) error {
					return fkAction(c, logger)
				},
			},
			{
				Name:      "bench",
				Usage:     "time repeated small relative solves",
				UsageText: "mantis-ik bench [--count 100] [--workers 4] [--step 0.01]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagCount, Value: 100, Usage: "number of solves"},
					&cli.IntFlag{Name: flagWorkers, Value: 1, Usage: "independent solvers run in parallel"},
					&cli.Float64Flag{Name: flagStep, Value: 0.01, Usage: "largest translation delta per axis in meters"},
					&cli.Int64Flag{Name: flagSeed, Value: 1, Usage: "random seed"},
					&cli.StringFlag{Name: flagSolver, Usage: "minimizer backend, overrides the config"},
				},
				Action: func(c *cli.Context) error {
					return benchAction(c, logger)
				},
			},
			{
				Name:   "joints",
				Usage:  "print the joint table",
				Action: jointsAction,
			},
			{
				Name:  "limits",
				Usage: "print the joint limits of the kinematic model",
				Action: func(c *cli.Context) error {
					return limitsAction(c, logger)
				},
			},
		},
	}
}
