package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/ik"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/logging"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/robots/mantis"
	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

func loadConfig(c *cli.Context) (*mantis.Config, error) {
	path := c.String(flagConfig)
	if path == "" {
		return &mantis.Config{}, nil
	}
	return mantis.ReadConfig(path)
}

func newSolver(c *cli.Context, logger logging.Logger) (*ik.DualArmIK, error) {
	conf, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	ikConf := conf.Config
	if solver := c.String(flagSolver); solver != "" {
		ikConf.Solver = solver
	}
	var initial []float64
	if c.IsSet(flagJoints) {
		initial = c.Float64Slice(flagJoints)
	}
	return ik.New(&ikConf, initial, logger)
}

func newTable(w io.Writer, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func solveAction(c *cli.Context, logger logging.Logger) error {
	side, err := joints.ParseSide(c.String(flagSide))
	if err != nil {
		return err
	}
	solver, err := newSolver(c, logger)
	if err != nil {
		return err
	}
	res, err := solver.IK(side,
		c.Float64("x"), c.Float64("y"), c.Float64("z"),
		c.Float64("roll"), c.Float64("pitch"), c.Float64("yaw"),
		!c.Bool(flagRelative))
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "converged: %t  iterations: %d  cost: %.3g  time: %s\n",
		res.Converged, res.Iterations, res.Cost, res.Duration)

	if c.Bool(flagSerial) {
		adapter, err := joints.NewAdapter(joints.Table(), solver.JointNames())
		if err != nil {
			return err
		}
		serial, err := adapter.ToSerial(res.Joints)
		if err != nil {
			return &ik.StageError{Stage: ik.StageMapping, Err: err}
		}
		t := newTable(w, "joint", "value")
		for _, name := range adapter.SerialOrder() {
			t.AppendRow(table.Row{name, fmt.Sprintf("%.5f", serial[name])})
		}
		t.Render()
	} else {
		t := newTable(w, "joint", "value")
		for i, name := range solver.JointNames() {
			t.AppendRow(table.Row{name, fmt.Sprintf("%.5f", res.Joints[i])})
		}
		t.Render()
	}

	left, right, err := solver.MarkerFK(res.Joints)
	if err != nil {
		return err
	}
	renderPoses(w, left, right)
	return nil
}

func fkAction(c *cli.Context, logger logging.Logger) error {
	solver, err := newSolver(c, logger)
	if err != nil {
		return err
	}
	left, right, err := solver.MarkerFK(solver.LastJoints())
	if err != nil {
		return err
	}
	renderPoses(c.App.Writer, left, right)
	return nil
}

func renderPoses(w io.Writer, left, right spatialmath.Pose) {
	t := newTable(w, "hand", "x", "y", "z", "roll", "pitch", "yaw")
	for _, hand := range []struct {
		name string
		pose spatialmath.Pose
	}{{"left", left}, {"right", right}} {
		p := hand.pose.Point()
		o := hand.pose.Orientation().EulerAngles()
		t.AppendRow(table.Row{
			hand.name,
			fmt.Sprintf("%.4f", p.X), fmt.Sprintf("%.4f", p.Y), fmt.Sprintf("%.4f", p.Z),
			fmt.Sprintf("%.4f", o.Roll), fmt.Sprintf("%.4f", o.Pitch), fmt.Sprintf("%.4f", o.Yaw),
		})
	}
	t.Render()
}

func jointsAction(c *cli.Context) error {
	t := newTable(c.App.Writer, "serial", "model", "sign", "min", "max")
	for _, j := range joints.Table() {
		t.AppendRow(table.Row{j.Serial, j.Model, j.Sign, j.Limit.Min, j.Limit.Max})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"head_pitch", "", "", joints.HeadPitchLimit.Min, joints.HeadPitchLimit.Max})
	t.AppendRow(table.Row{"head_yaw", "", "", joints.HeadYawLimit.Min, joints.HeadYawLimit.Max})
	t.AppendRow(table.Row{"gripper", "", "", joints.GripperLimit.Min, joints.GripperLimit.Max})
	t.Render()
	return nil
}

func limitsAction(c *cli.Context, logger logging.Logger) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	model, err := conf.LoadModel()
	if err != nil {
		return errors.Wrap(err, "loading model")
	}
	t := newTable(c.App.Writer, "joint", "min", "max", "neutral")
	neutral := model.ReferenceConfiguration()
	for i, l := range model.Limits() {
		t.AppendRow(table.Row{model.JointNames()[i], l.Min, l.Max, neutral[i]})
	}
	t.Render()
	logger.Debugw("model loaded", "name", model.Name(), "dof", model.DoF())
	return nil
}
