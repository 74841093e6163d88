package flow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ecotally-core/server/internal/assistant/footprint"
)

// Every prompt both confirms the previous answer and asks the next question,
// so each handler emits exactly one message per turn.

const welcomeMessage = `Hello! I am your virtual assistant for calculating your company's carbon footprint.
To get started, please tell me the company name.`

const companyNameError = `Sorry, I could not identify the company name. Could you type it again, please?`

const responsibleNameError = `I could not understand the contact name. Could you tell me again?`

const employeeCountError = `I could not understand the number of employees. Please enter a number (e.g. 50).`

const electricityError = `I could not understand the electricity consumption. Please enter a numeric value in kWh (e.g. 1500).`

const fuelTypeOptions = `What is the main fuel type the company uses? Choose an option:
1. Gasoline (for vehicles)
2. Diesel (for vehicles or generators)
3. Natural gas (for heating or processes)
4. Electricity (no fossil fuels)
5. None (no fuels used)`

const fuelTypeError = `I could not understand the fuel type. Please give the option number (1-5) or the fuel name.`

const fuelConsumptionError = `I could not understand the amount. Please enter the numeric value only.`

const gasQuestion = `What is the monthly natural gas consumption in m³? (Enter 0 if you do not use natural gas)`

const gasConsumptionError = `I could not understand the gas consumption. Please enter a numeric value in m³, or 0 if not applicable.`

const commuteDistanceError = `I could not understand the distance. Please enter a numeric value in kilometres.`

const percentageError = `I could not understand the percentage. Please enter a number between 0 and 100.`

const wasteError = `I could not understand the amount. Please enter a numeric value in kilograms.`

const waterError = `I could not understand the amount. Please enter a numeric value in m³.`

const paperError = `I could not understand the amount. Please enter a numeric value in kg.`

const officeError = `I could not understand the amount. Please enter a numeric value in m².`

const climateOptions = `Which climate-control system does the office mainly use? Choose an option:
1. Air conditioning
2. Gas heating
3. Electric heating
4. Heat pump (more efficient)
5. Natural (no active systems)`

const climateError = `I could not understand the option. Please give the number (1-5) or the system type.`

const airTravelError = `I could not understand the amount. Please enter a numeric value in km, or 0 if not applicable.`

const groundTravelError = `I could not understand the amount. Please enter a numeric value in km, or 0 if not applicable.`

const calculatingMessage = `Processing the data and calculating the carbon footprint...`

const goodbyeMessage = `Thanks for your time! Your answers so far have been saved. Come back whenever you want to finish the calculation.`

const computeFailedMessage = `Sorry, something went wrong while calculating the carbon footprint.
Please check that the data you entered is correct and try again.`

func confirmCompanyName(name string) string {
	return fmt.Sprintf(`Perfect! Company name registered: %s.
Now, could you tell me your name, or the name of the person filling in this information?`, name)
}

func confirmResponsibleName(responsible, company string) string {
	return fmt.Sprintf(`Thank you, %s!
Next, I need the approximate number of employees at %s.`, responsible, company)
}

func confirmEmployeeCount(count int) string {
	return fmt.Sprintf(`Understood! %d employees registered.

Now we will start with questions about energy consumption.
What is the approximate monthly electricity consumption in kWh? (You will find it on your electricity bill, for example: 1500 kWh)`, count)
}

func confirmElectricity(kwh float64) string {
	return fmt.Sprintf(`I have registered an electricity consumption of %g kWh per month.

%s`, kwh, fuelTypeOptions)
}

func confirmFuelType(name, unit string) string {
	return fmt.Sprintf(`Registered: %s as the main fuel.

What is the approximate monthly consumption of this fuel? Give the amount in %s (e.g. 200).`, name, unit)
}

func confirmFuelSkipped(name string) string {
	return fmt.Sprintf(`Registered: %s as the main energy source. No extra consumption value is needed.

%s`, name, gasQuestion)
}

func confirmFuelConsumption(amount float64, unit, name string) string {
	return fmt.Sprintf(`I have registered a consumption of %g %s per month of %s.

%s`, amount, unit, name, gasQuestion)
}

func confirmGasConsumption(m3 float64) string {
	return fmt.Sprintf(`Gas consumption registered: %g m³ per month.

Now, let's talk about employee transport.
What is the average one-way distance (in km) each employee travels to work daily?`, m3)
}

func confirmCommuteDistance(km float64) string {
	return fmt.Sprintf(`Average distance registered: %g km (one way).

Approximately, what percentage of your employees...
- use a private car to get to work? (e.g. 60%%)`, km)
}

func confirmCarPct(pct int) string {
	return fmt.Sprintf(`Registered: %d%% of employees use a private car.

What percentage use public transport (bus, train, metro, etc.)?`, pct)
}

func confirmPublicPct(pct int) string {
	return fmt.Sprintf(`Registered: %d%% of employees use public transport.

And what percentage commute sustainably (cycling, walking, etc.)?`, pct)
}

func confirmGreenPct(pct int) string {
	return fmt.Sprintf(`Registered: %d%% of employees commute sustainably.

Now let's talk about waste.
Approximately how many kilograms of waste does the company generate per month? (e.g. 200 kg)`, pct)
}

func confirmWasteKg(kg float64) string {
	return fmt.Sprintf(`Registered: %g kg of waste per month.

Of the total waste, approximately what percentage is recycled? (e.g. 30%%)`, kg)
}

const waterQuestion = `About water consumption, how many cubic metres (m³) of water does the company use per month? (e.g. 30 m³)`

func confirmRecyclePct(pct int) string {
	return fmt.Sprintf(`Registered: %d%% of waste recycled.

%s`, pct, waterQuestion)
}

const paperQuestion = `How many kilograms of paper does the company use per month? (e.g. 20 kg)`

func confirmWater(m3 float64) string {
	return fmt.Sprintf(`Registered: %g m³ of water per month.

%s`, m3, paperQuestion)
}

func estimatedWater(m3 float64) string {
	return fmt.Sprintf(`I understand you don't have the exact figure. I have estimated a consumption of about %g m³ based on the number of employees.

%s`, m3, paperQuestion)
}

const officeQuestion = `About the facilities, how many square metres (m²) does the main office or site have?`

func confirmPaper(kg float64) string {
	return fmt.Sprintf(`Registered: %g kg of paper per month.

%s`, kg, officeQuestion)
}

func estimatedPaper(kg float64) string {
	return fmt.Sprintf(`I understand you don't have the exact figure. I have estimated a consumption of about %g kg based on the number of employees.

%s`, kg, officeQuestion)
}

func confirmOffice(sqm float64) string {
	return fmt.Sprintf(`Registered: %g m² of office space.

%s`, sqm, climateOptions)
}

func estimatedOffice(sqm float64) string {
	return fmt.Sprintf(`I understand you don't have the exact figure. I have estimated about %g m² based on the number of employees.

%s`, sqm, climateOptions)
}

func confirmClimate(name string) string {
	return fmt.Sprintf(`Registered: %s as the main climate-control system.

Finally, let's talk about corporate travel.
How many kilometres in total do employees fly per month? (Enter 0 if there are no flights)`, name)
}

func confirmAirTravel(km float64) string {
	return fmt.Sprintf(`Registered: %g km per month by plane.

And how many kilometres in total are travelled per month on long-distance ground trips (train, bus)? (0 if not applicable)`, km)
}

func confirmGroundTravel(km float64, company string) string {
	return fmt.Sprintf(`Registered: %g km per month on ground trips.

Perfect! I have collected all the information I need. I will now calculate the carbon footprint of %s...

%s`, km, company, calculatingMessage)
}

// breakdownLabels translate internal category keys for the report.
var breakdownLabels = map[string]string{
	"electricity": "Electricity",
	"fuel":        "Fuel",
	"gas":         "Natural Gas",
	"commute":     "Employee Commute",
	"waste":       "Waste",
	"water":       "Water",
	"paper":       "Paper",
	"building":    "Facilities",
	"travel":      "Corporate Travel",
}

// breakdownOrder keeps the report stable; map iteration order is not.
var breakdownOrder = []string{
	"electricity", "fuel", "gas", "commute", "waste",
	"water", "paper", "building", "travel",
}

func formatResult(company string, res footprint.Result, recommendations []string) string {
	var breakdown strings.Builder
	for _, key := range breakdownOrder {
		v, ok := res.Breakdown[key]
		if !ok || v <= 0.001 {
			continue
		}
		fmt.Fprintf(&breakdown, "• %s: %.2f tons CO₂e\n", breakdownLabels[key], v)
	}
	// categories outside the known set still show up, sorted for stability
	var extra []string
	for key := range res.Breakdown {
		if _, known := breakdownLabels[key]; !known && res.Breakdown[key] > 0.001 {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(&breakdown, "• %s: %.2f tons CO₂e\n", key, res.Breakdown[key])
	}

	var recs strings.Builder
	for _, r := range recommendations {
		fmt.Fprintf(&recs, "• %s\n", r)
	}

	return fmt.Sprintf(`
Analysis complete! Results for %s:

📊 TOTAL CARBON FOOTPRINT: %.2f tons CO₂e per month
👤 FOOTPRINT PER EMPLOYEE: %.2f tons CO₂e per month

🏆 SUSTAINABILITY SCORE: %d/100 - %s

📋 BREAKDOWN BY CATEGORY:
%s
💡 RECOMMENDATIONS:
%s
Thank you for using our carbon footprint calculator. With this data you can start putting strategies in place to reduce your company's environmental impact.
`, company, res.TotalTons, res.PerEmployeeTons, res.Score, footprint.ScoreCategory(res.Score), breakdown.String(), recs.String())
}

func orCompany(name *string) string {
	if name != nil && *name != "" {
		return *name
	}
	return "your company"
}
