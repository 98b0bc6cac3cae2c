// Package main generates the named joint setters of the mantis Arm from the joint table.
package main

import (
	"bytes"
	_ "embed"
	"flag"
	"go/format"
	"os"
	"text/template"

	"github.com/pkg/errors"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
)

//go:embed setters.tmpl
var settersTmpl string

type templateInput struct {
	Package string
	Joints  []joints.Spec
}

func main() {
	if err := realMain(); err != nil {
		panic(err)
	}
}

func realMain() error {
	out := flag.String("o", "setters_generated.go", "output file")
	pkg := flag.String("package", "mantis", "package of the generated file")
	flag.Parse()

	src, err := generate(*pkg, joints.ArmJoints[:])
	if err != nil {
		return err
	}
	//nolint:gosec
	return os.WriteFile(*out, src, 0o644)
}

func generate(pkg string, specs []joints.Spec) ([]byte, error) {
	tmpl, err := template.New("setters").Parse(settersTmpl)
	if err != nil {
		return nil, errors.Wrap(err, "parsing template")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateInput{Package: pkg, Joints: specs}); err != nil {
		return nil, errors.Wrap(err, "executing template")
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "formatting generated code:\n%s", buf.String())
	}
	return src, nil
}
