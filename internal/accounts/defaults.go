package accounts

import "github.com/cleared-dev/finsim/internal/model"

// DefaultChartName is the name of the built-in chart.
const DefaultChartName = "Plan comptable général (extrait)"

// DefaultChart returns an excerpt of the French general chart of accounts.
func DefaultChart() *Chart {
	chart, err := FromList(DefaultChartName, defaultEntries())
	if err != nil {
		panic("accounts: invalid built-in chart: " + err.Error())
	}
	return chart
}

func defaultEntries() []Entry {
	entry := func(number, parent, description string) Entry {
		return Entry{Account: *model.NewAccount(number, description), Parent: parent}
	}
	return []Entry{
		entry("1", "", "Comptes de capitaux"),
		entry("10", "1", "Capital et réserves"),
		entry("101", "10", "Capital"),
		entry("108", "10", "Compte de l'exploitant"),
		entry("12", "1", "Résultat de l'exercice"),
		entry("16", "1", "Emprunts et dettes assimilées"),
		entry("164", "16", "Emprunts auprès des établissements de crédit"),

		entry("2", "", "Comptes d'immobilisations"),
		entry("21", "2", "Immobilisations corporelles"),
		entry("218", "21", "Autres immobilisations corporelles"),
		entry("2183", "218", "Matériel de bureau et matériel informatique"),
		entry("28", "2", "Amortissements des immobilisations"),
		entry("281", "28", "Amortissements des immobilisations corporelles"),

		entry("3", "", "Comptes de stocks et en-cours"),
		entry("37", "3", "Stocks de marchandises"),

		entry("4", "", "Comptes de tiers"),
		entry("40", "4", "Fournisseurs et comptes rattachés"),
		entry("401", "40", "Fournisseurs"),
		entry("41", "4", "Clients et comptes rattachés"),
		entry("411", "41", "Clients"),
		entry("42", "4", "Personnel et comptes rattachés"),
		entry("421", "42", "Personnel - Rémunérations dues"),
		entry("43", "4", "Sécurité sociale et autres organismes sociaux"),
		entry("431", "43", "Sécurité sociale"),
		entry("44", "4", "État et autres collectivités publiques"),
		entry("445", "44", "État - Taxes sur le chiffre d'affaires"),
		entry("4455", "445", "Taxes sur le chiffre d'affaires à décaisser"),
		entry("44551", "4455", "TVA à décaisser"),
		entry("4456", "445", "Taxes sur le chiffre d'affaires déductibles"),
		entry("44566", "4456", "TVA sur autres biens et services"),
		entry("4457", "445", "Taxes sur le chiffre d'affaires collectées"),
		entry("44571", "4457", "TVA collectée"),
		entry("47", "4", "Comptes transitoires ou d'attente"),
		entry("471", "47", "Compte d'attente"),

		entry("5", "", "Comptes financiers"),
		entry("51", "5", "Banques, établissements financiers et assimilés"),
		entry("512", "51", "Banques"),
		entry("53", "5", "Caisse"),
		entry("530", "53", "Caisse"),

		entry("6", "", "Comptes de charges"),
		entry("60", "6", "Achats"),
		entry("606", "60", "Achats non stockés de matières et fournitures"),
		entry("607", "60", "Achats de marchandises"),
		entry("61", "6", "Services extérieurs"),
		entry("613", "61", "Locations"),
		entry("616", "61", "Primes d'assurances"),
		entry("62", "6", "Autres services extérieurs"),
		entry("622", "62", "Rémunérations d'intermédiaires et honoraires"),
		entry("626", "62", "Frais postaux et de télécommunications"),
		entry("627", "62", "Services bancaires et assimilés"),
		entry("63", "6", "Impôts, taxes et versements assimilés"),
		entry("64", "6", "Charges de personnel"),
		entry("641", "64", "Rémunérations du personnel"),
		entry("645", "64", "Charges de sécurité sociale et de prévoyance"),
		entry("66", "6", "Charges financières"),
		entry("661", "66", "Charges d'intérêts"),
		entry("68", "6", "Dotations aux amortissements et aux provisions"),
		entry("681", "68", "Dotations aux amortissements"),

		entry("7", "", "Comptes de produits"),
		entry("70", "7", "Ventes de produits fabriqués, prestations de services, marchandises"),
		entry("701", "70", "Ventes de produits finis"),
		entry("706", "70", "Prestations de services"),
		entry("707", "70", "Ventes de marchandises"),
		entry("76", "7", "Produits financiers"),
		entry("768", "76", "Autres produits financiers"),
	}
}
