package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/pose_planner_prompt.txt
var PosePlannerPromptTxt []byte

//go:embed data/frame_style_instructions.txt
var FrameStyleInstructionsTxt []byte
