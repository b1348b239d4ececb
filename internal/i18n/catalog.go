package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys. Each is the English format string.
const (
	MsgReadingEntries     = "Reading entries..."
	MsgReadingExisting    = "Reading existing entries..."
	MsgNoEntriesFound     = "No entries found."
	MsgEntriesTotal       = "%s entries total."
	MsgListing            = "Listing entries for %s..."
	MsgReadingTimeReport  = "Reading time report..."
	MsgTimeReportNotFound = "Time report not found."
	MsgUpdatingCache      = "Updating status cache..."

	MsgWeekHeader         = "Week %s · %s – %s"
	MsgWorked             = "Worked"
	MsgRemaining          = "Remaining"
	MsgMissingDays        = "Missing days"
	MsgBalances           = "Balances"
	MsgOvertime           = "Overtime"
	MsgExtraTime          = "Extra time"
	MsgVacation           = "Vacation"
	MsgVacationRemaining  = "Remaining balance"
	MsgPlannedByYearEnd   = "Planned by Dec 31"
	MsgHoursUnit          = "hours"
	MsgDaysUnit           = "d"
	MsgQuickActions       = "Quick actions"
	MsgHintLogSingle      = "Book a single day:"
	MsgHintBatchFill      = "Book all missing days at once:"
	MsgHintBatchGenerate  = "Generate template & customize per day:"
	MsgNoEntriesRow       = "No entries"
	MsgWorkdaysWithout    = "%d workdays without entries."
	MsgHeaderDate         = "Date"
	MsgHeaderProject      = "Project"
	MsgHeaderServiceType  = "Service Type"
	MsgHeaderHours        = "Hours"
	MsgHeaderText         = "Text"
	MsgHeaderStatus       = "Status"
	MsgAlreadyBooked      = "%s already booked on %s for project %s"
	MsgUpdateOrNew        = "Update existing or add new? [%s/n] "
	MsgOpeningExisting    = "Opening existing entry for editing..."
	MsgCreatingNew        = "Creating new entry..."
	MsgSaving             = "Saving..."
	MsgSaved              = "Saved."
	MsgSaveManually       = "Form filled. Save it in the browser, then press Enter..."
	MsgNoEntryFound       = "No entry found on %s for project %s."
	MsgFoundEntry         = "Found: %s on %s · %s"
	MsgReallyDelete       = "Really delete?"
	MsgCancelled          = "Cancelled."
	MsgMultipleFound      = "%s entries found on %s for project %s:"
	MsgNoText             = "(no text)"
	MsgWhichDelete        = "Which one to delete? [1-%s / a=all / n=cancel] "
	MsgDeletingEntry      = "Deleting entry %s/%s..."
	MsgEntriesDeleted     = "%s entries deleted."
	MsgInvalidSelection   = "Invalid selection. Cancelled."
	MsgEntryDeleted       = "Entry deleted."
	MsgSelectToDelete     = "Select entries to delete:"
	MsgNoEntriesSelected  = "No entries selected."
	MsgConfirmDeleteCount = "Delete %s entries?"
	MsgBatchCreating      = "[%s/%s] Creating entry for %s..."
	MsgBatchSkipping      = "Skipped: %s · %s (already exists)"
	MsgBatchSummary       = "%s entries created, %s skipped."
	MsgBatchDryRun        = "Preview (dry-run):"
	MsgBatchNoEntries     = "No entries to create."
	MsgWeekendSkipped     = "Skipped: %s (weekend)"
	MsgBatchGenerated     = "Generated %s with %s missing days."
	MsgBatchGenerateHint  = "Edit the file, then run: abacus time batch --file %s"
	MsgDryRunNew          = "+ new"
	MsgDryRunSkip         = "skip"
	MsgDryRunExisting     = "exists"
	MsgDryRunSummary      = "%s new, %s skipped (duplicate), %s existing."
	MsgSummaryLine        = "Week %s · %s / %sh · %sh remaining"
	MsgSummaryMissing     = " · %s missing"
	MsgSummaryBalances    = "Overtime: %sh (%sd) · Vacation: %sd left"
	MsgUpdatedAgo         = "(updated %s ago)"
	MsgFetchingStatus     = "Fetching status..."
	MsgCheckWarning       = "Abacus: %s not logged"
	MsgCheckReminder      = "Did you log your hours this week? Check with: abacus summary"
	MsgCaptchaRunAgain    = "Captcha required, run the command again."
	MsgNoLongerListed     = "No longer listed, skipped: %s %s %s"
)

// translations holds de, fr, it, es renderings keyed by the English string.
var translations = map[string][4]string{
	MsgReadingEntries:     {"Einträge werden gelesen...", "Lecture des entrées...", "Lettura delle voci...", "Leyendo entradas..."},
	MsgReadingExisting:    {"Bestehende Einträge werden gelesen...", "Lecture des entrées existantes...", "Lettura delle voci esistenti...", "Leyendo entradas existentes..."},
	MsgNoEntriesFound:     {"Keine Einträge gefunden.", "Aucune entrée trouvée.", "Nessuna voce trovata.", "No se encontraron entradas."},
	MsgEntriesTotal:       {"%s Einträge total.", "%s entrées au total.", "%s voci totali.", "%s entradas en total."},
	MsgListing:            {"Einträge für %s werden aufgelistet...", "Liste des entrées pour %s...", "Elenco voci per %s...", "Listando entradas para %s..."},
	MsgReadingTimeReport:  {"Rapportmatrix wird gelesen...", "Lecture du rapport horaire...", "Lettura del rapporto orario...", "Leyendo informe horario..."},
	MsgTimeReportNotFound: {"Rapportmatrix nicht gefunden.", "Rapport horaire introuvable.", "Rapporto orario non trovato.", "Informe horario no encontrado."},
	MsgUpdatingCache:      {"Status-Cache wird aktualisiert...", "Mise à jour du cache de statut...", "Aggiornamento cache di stato...", "Actualizando caché de estado..."},

	MsgWeekHeader:        {"Woche %s · %s – %s", "Semaine %s · %s – %s", "Settimana %s · %s – %s", "Semana %s · %s – %s"},
	MsgWorked:            {"Gearbeitet", "Travaillé", "Lavorato", "Trabajado"},
	MsgRemaining:         {"Verbleibend", "Restant", "Rimanente", "Restante"},
	MsgMissingDays:       {"Fehlende Tage", "Jours manquants", "Giorni mancanti", "Días sin registrar"},
	MsgBalances:          {"Salden", "Soldes", "Saldi", "Saldos"},
	MsgOvertime:          {"Überstunden", "Heures sup.", "Straordinario", "Horas extra"},
	MsgExtraTime:         {"Überzeit", "Heures en plus", "Tempo extra", "Tiempo extra"},
	MsgVacation:          {"Ferien", "Vacances", "Ferie", "Vacaciones"},
	MsgVacationRemaining: {"Restguthaben", "Solde restant", "Saldo residuo", "Saldo restante"},
	MsgPlannedByYearEnd:  {"Geplant bis 31. Dez", "Prévu au 31 déc", "Previsto al 31 dic", "Previsto al 31 dic"},
	MsgHoursUnit:         {"Stunden", "heures", "ore", "horas"},
	MsgDaysUnit:          {"d", "j", "g", "d"},
	MsgHintLogSingle:     {"Einzelnen Tag buchen:", "Réserver un seul jour :", "Registrare un singolo giorno:", "Registrar un solo día:"},
	MsgHintBatchFill:     {"Alle fehlenden Tage auf einmal buchen:", "Réserver tous les jours manquants :", "Registrare tutti i giorni mancanti:", "Registrar todos los días faltantes:"},
	MsgHintBatchGenerate: {"Vorlage generieren & pro Tag anpassen:", "Générer un modèle & personnaliser par jour :", "Generare modello & personalizzare per giorno:", "Generar plantilla y personalizar por día:"},
	MsgNoEntriesRow:      {"Keine Einträge", "Aucune entrée", "Nessuna voce", "Sin entradas"},
	MsgHeaderDate:        {"Datum", "Date", "Data", "Fecha"},
	MsgHeaderProject:     {"Projekt", "Projet", "Progetto", "Proyecto"},
	MsgHeaderServiceType: {"Leistungsart", "Type de prestation", "Tipo di prestazione", "Tipo de servicio"},
	MsgHeaderHours:       {"Stunden", "Heures", "Ore", "Horas"},
	MsgHeaderText:        {"Text", "Texte", "Testo", "Texto"},
	MsgHeaderStatus:      {"Status", "Statut", "Stato", "Estado"},

	MsgAlreadyBooked:   {"%s bereits gebucht am %s für Projekt %s", "%s déjà réservé le %s pour le projet %s", "%s già prenotato il %s per il progetto %s", "%s ya reservado el %s para el proyecto %s"},
	MsgUpdateOrNew:     {"Bestehenden updaten oder neuen hinzufügen? [%s/n] ", "Mettre à jour l'existant ou en ajouter un nouveau? [%s/n] ", "Aggiornare l'esistente o aggiungerne uno nuovo? [%s/n] ", "¿Actualizar existente o añadir nuevo? [%s/n] "},
	MsgOpeningExisting: {"Bestehender Eintrag wird geöffnet...", "Ouverture de l'entrée existante...", "Apertura della voce esistente...", "Abriendo entrada existente..."},
	MsgCreatingNew:     {"Neuer Eintrag wird erstellt...", "Création d'une nouvelle entrée...", "Creazione di una nuova voce...", "Creando nueva entrada..."},
	MsgSaving:          {"Speichern...", "Enregistrement...", "Salvataggio...", "Guardando..."},
	MsgSaved:           {"Gespeichert.", "Enregistré.", "Salvato.", "Guardado."},
	MsgSaveManually:    {"Formular ausgefüllt. Im Browser speichern, dann Enter drücken...", "Formulaire rempli. Enregistrez dans le navigateur, puis appuyez sur Entrée...", "Modulo compilato. Salvare nel browser, poi premere Invio...", "Formulario completado. Guarde en el navegador y pulse Intro..."},

	MsgNoEntryFound:       {"Kein Eintrag gefunden am %s für Projekt %s.", "Aucune entrée trouvée le %s pour le projet %s.", "Nessuna voce trovata il %s per il progetto %s.", "No se encontró entrada el %s para el proyecto %s."},
	MsgFoundEntry:         {"Gefunden: %s am %s · %s", "Trouvé: %s le %s · %s", "Trovato: %s il %s · %s", "Encontrado: %s el %s · %s"},
	MsgReallyDelete:       {"Wirklich löschen?", "Vraiment supprimer?", "Eliminare davvero?", "¿Realmente eliminar?"},
	MsgCancelled:          {"Abgebrochen.", "Annulé.", "Annullato.", "Cancelado."},
	MsgMultipleFound:      {"%s Einträge gefunden am %s für Projekt %s:", "%s entrées trouvées le %s pour le projet %s:", "%s voci trovate il %s per il progetto %s:", "%s entradas encontradas el %s para el proyecto %s:"},
	MsgNoText:             {"(kein Text)", "(pas de texte)", "(nessun testo)", "(sin texto)"},
	MsgWhichDelete:        {"Welchen löschen? [1-%s / a=alle / n=abbrechen] ", "Lequel supprimer? [1-%s / a=tous / n=annuler] ", "Quale eliminare? [1-%s / a=tutti / n=annulla] ", "¿Cuál eliminar? [1-%s / a=todos / n=cancelar] "},
	MsgDeletingEntry:      {"Lösche Eintrag %s/%s...", "Suppression de l'entrée %s/%s...", "Eliminazione voce %s/%s...", "Eliminando entrada %s/%s..."},
	MsgEntriesDeleted:     {"%s Einträge gelöscht.", "%s entrées supprimées.", "%s voci eliminate.", "%s entradas eliminadas."},
	MsgInvalidSelection:   {"Ungültige Auswahl. Abgebrochen.", "Sélection invalide. Annulé.", "Selezione non valida. Annullato.", "Selección inválida. Cancelado."},
	MsgEntryDeleted:       {"Eintrag gelöscht.", "Entrée supprimée.", "Voce eliminata.", "Entrada eliminada."},
	MsgSelectToDelete:     {"Einträge zum Löschen auswählen:", "Sélectionnez les entrées à supprimer:", "Seleziona le voci da eliminare:", "Seleccione las entradas a eliminar:"},
	MsgNoEntriesSelected:  {"Keine Einträge ausgewählt.", "Aucune entrée sélectionnée.", "Nessuna voce selezionata.", "Ninguna entrada seleccionada."},
	MsgConfirmDeleteCount: {"%s Einträge löschen?", "Supprimer %s entrées?", "Eliminare %s voci?", "¿Eliminar %s entradas?"},

	MsgBatchCreating:     {"[%s/%s] Eintrag für %s wird erstellt...", "[%s/%s] Création de l'entrée pour %s...", "[%s/%s] Creazione voce per %s...", "[%s/%s] Creando entrada para %s..."},
	MsgBatchSkipping:     {"Übersprungen: %s · %s (bereits vorhanden)", "Ignoré: %s · %s (existe déjà)", "Ignorato: %s · %s (esiste già)", "Omitido: %s · %s (ya existe)"},
	MsgBatchSummary:      {"%s Einträge erstellt, %s übersprungen.", "%s entrées créées, %s ignorées.", "%s voci create, %s ignorate.", "%s entradas creadas, %s omitidas."},
	MsgBatchDryRun:       {"Vorschau (dry-run):", "Aperçu (dry-run):", "Anteprima (dry-run):", "Vista previa (dry-run):"},
	MsgBatchNoEntries:    {"Keine Einträge zu erstellen.", "Aucune entrée à créer.", "Nessuna voce da creare.", "No hay entradas que crear."},
	MsgWeekendSkipped:    {"Übersprungen: %s (Wochenende)", "Ignoré: %s (week-end)", "Ignorato: %s (fine settimana)", "Omitido: %s (fin de semana)"},
	MsgBatchGenerated:    {"%s mit %s fehlenden Tagen generiert.", "%s généré avec %s jours manquants.", "%s generato con %s giorni mancanti.", "%s generado con %s días faltantes."},
	MsgBatchGenerateHint: {"Datei bearbeiten, dann ausführen: abacus time batch --file %s", "Modifiez le fichier, puis exécutez: abacus time batch --file %s", "Modifica il file, poi esegui: abacus time batch --file %s", "Edite el archivo, luego ejecute: abacus time batch --file %s"},
	MsgDryRunNew:         {"+ neu", "+ nouveau", "+ nuovo", "+ nuevo"},
	MsgDryRunSkip:        {"übersprungen", "ignoré", "ignorato", "omitido"},
	MsgDryRunExisting:    {"vorhanden", "existant", "esistente", "existente"},
	MsgDryRunSummary:     {"%s neu, %s übersprungen (Duplikat), %s vorhanden.", "%s nouveaux, %s ignorés (doublon), %s existants.", "%s nuovi, %s ignorati (duplicato), %s esistenti.", "%s nuevos, %s omitidos (duplicado), %s existentes."},

	MsgSummaryLine:     {"KW %s · %s / %sh · %sh verbleibend", "Sem. %s · %s / %sh · %sh restant", "Sett. %s · %s / %sh · %sh rimanenti", "Sem. %s · %s / %sh · %sh restante"},
	MsgSummaryMissing:  {" · %s fehlt", " · %s manquant", " · %s mancante", " · %s faltante"},
	MsgSummaryBalances: {"Überstunden: %sh (%sd) · Ferien: %sd übrig", "Heures sup.: %sh (%sj) · Vacances: %sj restant", "Straordinario: %sh (%sg) · Ferie: %sg rimanenti", "Horas extra: %sh (%sd) · Vacaciones: %sd restante"},
	MsgUpdatedAgo:      {"(aktualisiert vor %s)", "(mis à jour il y a %s)", "(aggiornato %s fa)", "(actualizado hace %s)"},
	MsgFetchingStatus:  {"Status wird abgerufen...", "Récupération du statut...", "Recupero dello stato...", "Obteniendo estado..."},
	MsgCheckWarning:    {"Abacus: %s nicht gebucht", "Abacus: %s non enregistré", "Abacus: %s non registrato", "Abacus: %s no registrado"},
	MsgCheckReminder:   {"Sind deine Stunden eingetragen? Prüfe mit: abacus summary", "Avez-vous enregistré vos heures cette semaine ? Vérifiez avec : abacus summary", "Hai registrato le ore? Controlla con: abacus summary", "¿Registraste tus horas esta semana? Verifica con: abacus summary"},
	MsgCaptchaRunAgain: {"Captcha erforderlich, Befehl erneut ausführen.", "Captcha requis, relancez la commande.", "Captcha richiesto, esegui di nuovo il comando.", "Captcha requerido, ejecute el comando de nuevo."},
	MsgNoLongerListed:  {"Nicht mehr vorhanden, übersprungen: %s %s %s", "Plus listé, ignoré : %s %s %s", "Non più presente, ignorato: %s %s %s", "Ya no aparece, omitido: %s %s %s"},
}

// workdayForms holds the singular and plural form of MsgWorkdaysWithout.
var workdayForms = map[Locale][2]string{
	English: {"%d workday without entries.", "%d workdays without entries."},
	German:  {"%d Arbeitstag ohne Einträge.", "%d Arbeitstage ohne Einträge."},
	French:  {"%d jour ouvrable sans entrées.", "%d jours ouvrables sans entrées."},
	Italian: {"%d giorno lavorativo senza voci.", "%d giorni lavorativi senza voci."},
	Spanish: {"%d día laborable sin entradas.", "%d días laborables sin entradas."},
}

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	translated := []Locale{German, French, Italian, Spanish}
	for key, texts := range translations {
		for i, l := range translated {
			if err := b.SetString(l.tag(), key, texts[i]); err != nil {
				panic(err)
			}
		}
	}
	for l, forms := range workdayForms {
		msg := plural.Selectf(1, "%d", "=1", forms[0], "other", forms[1])
		if err := b.Set(l.tag(), MsgWorkdaysWithout, msg); err != nil {
			panic(err)
		}
	}
	return b
}
