// Package urdf holds the robot description files shipped with the SDK.
package urdf

import (
	_ "embed"
)

// Extension is the file extension associated with URDF files.
const Extension string = "urdf"

// Mantis is the URDF of the Mantis upper body: waist, torso, neck/head, two 7-DoF arms and a
// prismatic gripper on each hand. The wrist yaw frames L_Wrist_Yaw_Joint and R_Wrist_Yaw_Joint
// are the arm end-effectors; the hand frames coincide with them.
//
//go:embed mantis.urdf
var Mantis []byte
