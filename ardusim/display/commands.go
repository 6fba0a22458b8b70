package display

// SSD1306 command bytes, sent with DC low.
const (
	cmdLowColumn       = 0x00 // 0x00-0x0F, page addressing only
	cmdHighColumn      = 0x10 // 0x10-0x1F, page addressing only
	cmdAddressingMode  = 0x20
	cmdColumnRange     = 0x21
	cmdPageRange       = 0x22
	cmdScrollRight     = 0x26
	cmdScrollLeft      = 0x27
	cmdScrollVertRight = 0x29
	cmdScrollVertLeft  = 0x2A
	cmdScrollOff       = 0x2E
	cmdScrollOn        = 0x2F
	cmdStartLine       = 0x40 // 0x40-0x7F
	cmdContrast        = 0x81
	cmdChargePump      = 0x8D
	cmdSegmentRemap    = 0xA0 // 0xA0/0xA1
	cmdScrollArea      = 0xA3
	cmdFollowRAM       = 0xA4
	cmdEntireOn        = 0xA5
	cmdNormal          = 0xA6
	cmdInvert          = 0xA7
	cmdMultiplex       = 0xA8
	cmdDisplayOff      = 0xAE
	cmdDisplayOn       = 0xAF
	cmdPageStart       = 0xB0 // 0xB0-0xB7, page addressing only
	cmdComScanInc      = 0xC0
	cmdComScanDec      = 0xC8
	cmdDisplayOffset   = 0xD3
	cmdClockDivide     = 0xD5
	cmdPrecharge       = 0xD9
	cmdComPins         = 0xDA
	cmdVcomDeselect    = 0xDB
	cmdNop             = 0xE3
)

// maxArgs is the longest argument list of any command (horizontal scroll).
const maxArgs = 6

// argCount returns how many argument bytes follow cmd.
func argCount(cmd byte) int {
	switch cmd {
	case cmdAddressingMode, cmdContrast, cmdChargePump, cmdMultiplex,
		cmdDisplayOffset, cmdClockDivide, cmdPrecharge, cmdComPins, cmdVcomDeselect:
		return 1
	case cmdColumnRange, cmdPageRange, cmdScrollArea:
		return 2
	case cmdScrollVertRight, cmdScrollVertLeft:
		return 5
	case cmdScrollRight, cmdScrollLeft:
		return 6
	default:
		return 0
	}
}

// AddressingMode selects how the RAM pointer advances after a data byte.
type AddressingMode uint8

const (
	HorizontalAddressing AddressingMode = iota
	VerticalAddressing
	PageAddressing
)

func (m AddressingMode) String() string {
	switch m {
	case HorizontalAddressing:
		return "horizontal"
	case VerticalAddressing:
		return "vertical"
	case PageAddressing:
		return "page"
	default:
		return "invalid"
	}
}
