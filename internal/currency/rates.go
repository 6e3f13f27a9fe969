package currency

// usdRates holds units of each currency per one US dollar.
var usdRates = map[Code]float64{
	"AED": 3.67, "AFN": 70, "ALL": 95, "AMD": 387, "AOA": 830, "ARS": 880, "AUD": 1.52,
	"AZN": 1.7, "BAM": 1.8, "BBD": 2, "BDT": 110, "BGN": 1.8, "BHD": 0.37, "BIF": 2850,
	"BND": 1.35, "BOB": 6.9, "BRL": 5.15, "BSD": 1, "BTN": 83, "BWP": 13.5, "BYN": 3.2,
	"BZD": 2, "CAD": 1.36, "CDF": 2750, "CHF": 0.91, "CLP": 950, "CNY": 7.23, "COP": 3800,
	"CRC": 500, "CUP": 24, "CVE": 102, "CZK": 23, "DJF": 177, "DKK": 6.9, "DOP": 58,
	"DZD": 134, "EGP": 47.5, "ERN": 15, "ETB": 56, "EUR": 0.92, "FJD": 2.2, "GBP": 0.79,
	"GEL": 2.6, "GHS": 13, "GMD": 68, "GNF": 8600, "GTQ": 7.7, "GYD": 209, "HKD": 7.82,
	"HNL": 24, "HTG": 132, "HUF": 360, "IDR": 16000, "ILS": 3.7, "INR": 83.5, "IQD": 1300,
	"IRR": 42000, "ISK": 138, "JMD": 155, "JOD": 0.7, "JPY": 155.0, "KES": 130, "KGS": 89,
	"KHR": 4000, "KMF": 455, "KRW": 1350, "KWD": 0.31, "KZT": 445, "LAK": 21000,
	"LBP": 89000, "LKR": 300, "LRD": 190, "LSL": 18, "LYD": 4.8, "MAD": 10, "MDL": 17,
	"MGA": 4500, "MKD": 57, "MMK": 2100, "MNT": 3400, "MRU": 39, "MTL": 0.4, "MUR": 46,
	"MVR": 15, "MWK": 1700, "MXN": 16.9, "MYR": 4.75, "MZN": 63, "NAD": 18, "NGN": 1300,
	"NIO": 36, "NOK": 10.9, "NPR": 133, "NZD": 1.66, "OMR": 0.38, "PAB": 1, "PEN": 3.7,
	"PGK": 3.8, "PHP": 57, "PKR": 278, "PLN": 3.96, "PYG": 7400, "QAR": 3.64, "RON": 4.6,
	"RSD": 108, "RUB": 92.5, "RWF": 1290, "SAR": 3.75, "SBD": 8.4, "SCR": 13, "SDG": 600,
	"SEK": 10.8, "SGD": 1.35, "SLL": 22000, "SOS": 570, "SRD": 34, "SSP": 130, "STN": 22,
	"SYP": 13000, "SZL": 18, "THB": 36.8, "TJS": 10, "TMT": 3.5, "TND": 3.1, "TOP": 2.3,
	"TRY": 32.2, "TTD": 6.7, "TWD": 32, "TZS": 2500, "UAH": 39, "UGX": 3800, "USD": 1,
	"UYU": 38, "UZS": 12600, "VES": 36, "VND": 25000, "VUV": 120, "WST": 2.7, "XAF": 605,
	"XCD": 2.7, "XOF": 605, "YER": 250, "ZAR": 18.5, "ZMW": 26, "ZWL": 13,
}
