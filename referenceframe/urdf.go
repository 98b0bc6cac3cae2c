package referenceframe

import (
	"encoding/xml"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/spatialmath"
)

// URDFConfig represents the supported fields of a Universal Robot Description Format (URDF) file.
type URDFConfig struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []URDFLink  `xml:"link"`
	Joints  []URDFJoint `xml:"joint"`
}

// URDFLink is a struct which details the XML used in a URDF link element.
type URDFLink struct {
	XMLName xml.Name `xml:"link"`
	Name    string   `xml:"name,attr"`
}

// URDFLimit is the limit element of a joint. Revolute limits are in radians, prismatic in meters.
type URDFLimit struct {
	XMLName xml.Name `xml:"limit"`
	Lower   float64  `xml:"lower,attr"`
	Upper   float64  `xml:"upper,attr"`
}

// URDFFrame names the link on either side of a joint.
type URDFFrame struct {
	Link string `xml:"link,attr"`
}

// URDFPose is the origin element of a joint.
type URDFPose struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

// URDFAxis is the axis element of a joint.
type URDFAxis struct {
	XYZ string `xml:"xyz,attr"`
}

// URDFJoint is a struct which details the XML used in a URDF joint element.
type URDFJoint struct {
	XMLName xml.Name   `xml:"joint"`
	Name    string     `xml:"name,attr"`
	Type    string     `xml:"type,attr"`
	Parent  URDFFrame  `xml:"parent"`
	Child   URDFFrame  `xml:"child"`
	Origin  *URDFPose  `xml:"origin,omitempty"`
	Axis    *URDFAxis  `xml:"axis,omitempty"`
	Limit   *URDFLimit `xml:"limit,omitempty"`
}

// ParseURDFFile reads a URDF file from disk and builds its kinematic tree.
func ParseURDFFile(filename string) (*Model, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}
	return ParseURDF(xmlData)
}

// ParseURDF builds the kinematic tree described by URDF XML data.
func ParseURDF(xmlData []byte) (*Model, error) {
	// empty data probably means that the read URDF has no actionable information
	if len(xmlData) == 0 {
		return nil, ErrNoModelInformation
	}

	urdf := &URDFConfig{}
	if err := xml.Unmarshal(xmlData, urdf); err != nil {
		return nil, errors.Wrap(err, "failed to convert URDF data to equivalent URDFConfig struct")
	}
	if len(urdf.Joints) == 0 {
		return nil, ErrNoModelInformation
	}

	joints := make([]*Joint, 0, len(urdf.Joints))
	for _, jointElem := range urdf.Joints {
		joint, err := jointElem.parse()
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q", jointElem.Name)
		}
		joints = append(joints, joint)
	}
	links := make([]string, 0, len(urdf.Links))
	for _, link := range urdf.Links {
		links = append(links, link.Name)
	}
	return NewModel(urdf.Name, links, joints)
}

func (jointElem *URDFJoint) parse() (*Joint, error) {
	if jointElem.Name == "" {
		return nil, errors.New("joint has no name")
	}
	joint := &Joint{
		Name:   jointElem.Name,
		Type:   jointElem.Type,
		Parent: jointElem.Parent.Link,
		Child:  jointElem.Child.Link,
		Origin: spatialmath.NewZeroPose(),
	}

	if jointElem.Origin != nil {
		origin, err := jointElem.Origin.parse()
		if err != nil {
			return nil, err
		}
		joint.Origin = origin
	}

	switch jointElem.Type {
	case ContinuousJoint, RevoluteJoint, PrismaticJoint:
		// URDF default axis.
		joint.Axis = r3.Vector{X: 1}
		if jointElem.Axis != nil {
			axis, err := spaceDelimitedStringToVector(jointElem.Axis.XYZ, r3.Vector{X: 1})
			if err != nil {
				return nil, errors.Wrap(err, "axis")
			}
			if axis.Norm() == 0 {
				return nil, errors.New("axis must be non-zero")
			}
			joint.Axis = axis.Normalize()
		}
		switch {
		case jointElem.Type == ContinuousJoint:
			joint.Limit = Limit{Min: math.Inf(-1), Max: math.Inf(1)}
		case jointElem.Limit == nil:
			return nil, errors.Errorf("%s joint requires a limit element", jointElem.Type)
		default:
			if jointElem.Limit.Lower > jointElem.Limit.Upper {
				return nil, errors.Errorf("lower limit %f above upper limit %f", jointElem.Limit.Lower, jointElem.Limit.Upper)
			}
			joint.Limit = Limit{Min: jointElem.Limit.Lower, Max: jointElem.Limit.Upper}
		}
	case FixedJoint:
	default:
		return nil, NewUnsupportedJointTypeError(jointElem.Type)
	}
	return joint, nil
}

func (p *URDFPose) parse() (spatialmath.Pose, error) {
	xyz, err := spaceDelimitedStringToVector(p.XYZ, r3.Vector{})
	if err != nil {
		return spatialmath.Pose{}, errors.Wrap(err, "origin xyz")
	}
	rpy, err := spaceDelimitedStringToVector(p.RPY, r3.Vector{})
	if err != nil {
		return spatialmath.Pose{}, errors.Wrap(err, "origin rpy")
	}
	return spatialmath.NewPoseFromXYZRPY(xyz.X, xyz.Y, xyz.Z, rpy.X, rpy.Y, rpy.Z), nil
}

// spaceDelimitedStringToVector parses "x y z". An empty string yields the default.
func spaceDelimitedStringToVector(s string, def r3.Vector) (r3.Vector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return def, nil
	}
	if len(fields) != 3 {
		return r3.Vector{}, errors.Errorf("expected 3 values, got %q", s)
	}
	var vals [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r3.Vector{}, err
		}
		vals[i] = v
	}
	return r3.Vector{vals[0], vals[1], vals[2]}, nil
}
