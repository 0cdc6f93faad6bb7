package decoder

// labelTypes maps common ACARS label codes to their human-readable
// description, mirroring the airframes metadata table. Unknown labels
// map to an empty description.
var labelTypes = map[string]string{
	"_d": "No information to transmit",
	"00": "Emergency situation report",
	"5Z": "Airline designated downlink",
	"7A": "Aircraft initiated position report",
	"10": "Out/Fuel report",
	"11": "Off/In report",
	"12": "In/Fuel report",
	"13": "Out/Return in report",
	"14": "ETA report",
	"15": "Position report",
	"16": "Lat/Lon position report",
	"17": "Weather observation",
	"20": "Flight plan data",
	"30": "Maintenance data",
	"B1": "Oceanic clearance request",
	"B2": "Oceanic clearance readback",
	"B9": "ATIS facilities notification",
	"C1": "Cabin crew message",
	"H1": "Message to/from terminal",
	"Q0": "Link test",
	"Q1": "Departure/arrival report",
	"Q2": "ETA report",
	"QA": "Out/gate report",
	"QB": "Off report",
	"QC": "On report",
	"QD": "In/gate report",
	"SA": "Media advisory",
	"SQ": "Squitter message",
}

func labelType(label string) string {
	return labelTypes[label]
}
