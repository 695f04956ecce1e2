package fallback

import (
	"fmt"
	"math"
	"strings"

	"krishi-advisor/api/internal/advisory/types"
)

// cropDays is the sowing-to-harvest span per crop. Unknown crops get 110.
var cropDays = map[string]int{
	"paddy":     110,
	"wheat":     120,
	"cotton":    150,
	"sugarcane": 300,
	"maize":     90,
	"potato":    90,
}

const defaultCropDays = 110

// CropDays returns the crop cycle length in days.
func CropDays(crop string) int {
	if d, ok := cropDays[strings.ToLower(strings.TrimSpace(crop))]; ok {
		return d
	}
	return defaultCropDays
}

// CalendarTasks is the static calendar used when no model calendar is
// available: tasks every 2-4 days from two weeks before sowing to harvest.
// Quantities are scaled to landAcres.
func CalendarTasks(crop string, landAcres float64) []types.CropCalendarTaskTemplate {
	acres := formatNumber(landAcres)
	area := acres + " एकड़"
	q := func(perAcre float64) string {
		return fmt.Sprintf("~%d kg", int(math.Round(perAcre*landAcres)))
	}

	task := func(day int, stage, title, desc, hint string) types.CropCalendarTaskTemplate {
		return types.CropCalendarTaskTemplate{DayFromSowing: day, Stage: stage, Title: title, Description: desc, QuantityHint: hint}
	}

	tasks := []types.CropCalendarTaskTemplate{
		task(-14, "Land prep", "पहली जुताई", "गहरी जुताई करें। पुरानी जड़ें हटाएं।", area),
		task(-12, "Land prep", "खरपतवार साफ़ करें", "खेत से खरपतवार निकालें।", area),
		task(-10, "Land prep", "दूसरी जुताई", "मिट्टी भुरभुरी करें। समतल करें।", area),
		task(-7, "Land prep", "खेत तैयारी पूर्ण", "अंतिम जुताई। मिट्टी समतल करें।", area),
		task(-5, "Land prep", "बीज तैयारी", "बीज खरीदें। गुणवत्ता जांचें।", area+" के लिए"),
		task(-3, "Land prep", "बीज उपचार", "बीज में फफूंदनाशक लगाएं।", "दवा के निर्देश अनुसार"),

		task(0, "Sowing", "बुवाई", "बीज बोएं। उचित दूरी रखें।", area),
		task(2, "Sowing", "बुवाई निरीक्षण", "बीज ठीक बोया गया है जांचें।", "-"),

		task(4, "Vegetative", "अंकुरण जांच", "अंकुरण शुरू हुआ जांचें। गैप भराई जरूरत जांचें।", "-"),
		task(6, "Vegetative", "गैप भराई (जरूरत हो तो)", "जहां अंकुर नहीं निकले वहां दोबारा बीज डालें।", "-"),
		task(7, "Vegetative", "पहली सिंचाई", "पहली सिंचाई करें। मिट्टी नम रखें।", area),
		task(10, "Vegetative", "पहली निराई", "छोटी खरपतवार हटाएं।", area),
		task(14, "Vegetative", "फसल निरीक्षण", "कीट और रोग की जांच करें।", "-"),
		task(17, "Vegetative", "दूसरी सिंचाई", "दूसरी सिंचाई। पानी भरपूर।", area),
		task(21, "Vegetative", "पहला उर्वरक", "यूरिया या DAP लगाएं। स्प्रे या ब्रॉडकास्ट।", q(25)+" Urea for "+acres+" acres"),
		task(24, "Vegetative", "दूसरी निराई", "खरपतवार निकालें।", area),
		task(28, "Vegetative", "तीसरी सिंचाई", "तीसरी सिंचाई।", area),
		task(31, "Vegetative", "मिट्टी नमी जांच", "सिंचाई की जरूरत जांचें।", "-"),
		task(35, "Vegetative", "चौथी सिंचाई", "चौथी सिंचाई करें।", area),
		task(38, "Vegetative", "जल निकासी जांच", "खेत में पानी जमा न हो।", "-"),
		task(42, "Vegetative", "तीसरी निराई", "खरपतवार निकालें।", area),

		task(45, "Flowering", "दूसरा उर्वरक", "Potash या NPK लगाएं। फूल आने से पहले।", q(20)+" for "+acres+" acres"),
		task(49, "Flowering", "पांचवीं सिंचाई", "फूल आने के समय सिंचाई।", area),
		task(52, "Flowering", "कीट निरीक्षण", "कीट या रोग की जांच।", "-"),

		task(56, "Fruiting", "कीटनाशक स्प्रे", "नीम तेल या अनुशंसित स्प्रे।", area),
		task(60, "Fruiting", "छठी सिंचाई", "दाना भरने के समय सिंचाई।", area),
		task(63, "Fruiting", "फसल सुरक्षा जांच", "कीट/रोग पर नजर रखें।", "-"),
		task(70, "Fruiting", "सिंचाई बंद (पकने से पहले)", "पकने के 10-15 दिन पहले सिंचाई बंद।", "-"),

		task(75, "Harvest", "पकने की जांच", "दाने पक गए जांचें।", "-"),
		task(80, "Harvest", "कटाई तैयारी", "कटाई के औजार तैयार करें।", area),
		task(85, "Harvest", "कटाई शुरू", "फसल काटें।", area),
		task(90, "Harvest", "थ्रेशिंग / सुखाना", "दाना अलग करें या सुखाएं।", area),
		task(95, "Harvest", "कटाई पूर्ण", "फसल की कटाई पूरी करें। भंडारण तैयार करें।", area),
	}

	// longer crops get a closing harvest task near the end of the cycle
	if total := CropDays(crop); total > 100 {
		if last := tasks[len(tasks)-1]; last.DayFromSowing < total-5 {
			tasks = append(tasks, task(total-5, "Harvest", "कटाई अंतिम", "बची हुई फसल काटें।", area))
		}
	}
	return tasks
}
