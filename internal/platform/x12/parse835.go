package x12

import "strings"

// Parse835 parses a raw 835 remittance advice into a typed document tree.
// Structural pre-validation runs first; any fatal diagnostic short-circuits
// the semantic parse and returns an empty envelope and transaction list with
// the diagnostics, never partially-constructed claim data. A transaction
// whose ST has no matching SE fails alone; sibling transactions still parse.
func Parse835(raw string) *RemittanceFile {
	file := &RemittanceFile{}

	d, diags := DetectDelimiters(raw)
	if HasFatal(diags) {
		file.Diagnostics = diags
		return file
	}

	segments := Tokenize(raw, d)
	file.SegmentCount = len(segments)

	diags = append(diags, validateSegments(segments)...)
	if HasFatal(diags) {
		file.Diagnostics = diags
		return file
	}

	p := &parser835{comp: string(d.Component)}
	file.Envelope = p.parseEnvelope(segments)

	for i := 0; i < len(segments); i++ {
		if segments[i].ID != "ST" {
			continue
		}
		end := -1
		for j := i + 1; j < len(segments); j++ {
			if segments[j].ID == "SE" {
				end = j
				break
			}
			if segments[j].ID == "ST" {
				break
			}
		}
		if end == -1 {
			p.diags = append(p.diags, errorDiag("ST", i,
				"transaction %s has no matching SE trailer", segments[i].Element(2)))
			continue
		}
		file.Transactions = append(file.Transactions, p.parseTransaction(segments[i:end+1], i))
		i = end
	}

	file.Diagnostics = append(diags, p.diags...)
	return file
}

// parser835 walks validated segments into the typed tree, accumulating
// advisory diagnostics as it goes.
type parser835 struct {
	comp  string
	diags []Diagnostic
}

func (p *parser835) components(value string) []string {
	return strings.Split(value, p.comp)
}

// parseEnvelope extracts the interchange and group identities by fixed
// element index. The validator has already guaranteed ISA and GS exist.
func (p *parser835) parseEnvelope(segments []Segment) Envelope {
	var env Envelope
	for _, seg := range segments {
		switch seg.ID {
		case "ISA":
			env.SenderID = strings.TrimSpace(seg.Element(6))
			env.ReceiverID = strings.TrimSpace(seg.Element(8))
			env.Date = seg.Element(9)
			env.ControlNumber = strings.TrimSpace(seg.Element(13))
		case "GS":
			env.FunctionalCode = seg.Element(1)
			env.GroupControlNumber = seg.Element(6)
			env.VersionCode = seg.Element(8)
		}
		if seg.ID == "GS" {
			break
		}
	}
	return env
}

// payerLoopSegments are the nested segments scanned inside an N1 identity
// loop before the next loop-opening segment.
func isIdentityChild(id string) bool {
	switch id {
	case "N3", "N4", "PER", "REF":
		return true
	}
	return false
}

func (p *parser835) parseTransaction(segs []Segment, offset int) Transaction {
	tx := Transaction{}

	for i := 0; i < len(segs); i++ {
		seg := segs[i]
		switch seg.ID {
		case "ST":
			tx.ControlNumber = seg.Element(2)
		case "BPR":
			tx.TransactionType = seg.Element(1)
			tx.TotalPaid = ParseAmount(seg.Element(2))
			tx.PaymentMethod = seg.Element(4)
			tx.PaymentDate = seg.Element(16)
		case "TRN":
			tx.TraceNumber = seg.Element(2)
		case "DTM":
			if seg.Element(1) == "405" {
				tx.ProductionDate = seg.Element(2)
			}
		case "N1":
			switch seg.Element(1) {
			case "PR":
				i = p.parsePayer(&tx.Payer, segs, i)
			case "PE":
				i = p.parsePayee(&tx.Payee, segs, i)
			}
		case "CLP":
			end := i + 1
			for end < len(segs) {
				id := segs[end].ID
				if id == "CLP" || id == "PLB" || id == "SE" {
					break
				}
				end++
			}
			tx.Claims = append(tx.Claims, p.parseClaim(segs[i:end], offset+i))
			i = end - 1
		case "PLB":
			tx.ProviderAdjustments = append(tx.ProviderAdjustments, p.parsePLB(seg))
		}
	}
	return tx
}

// parsePayer consumes the N1*PR loop starting at index i and returns the
// index of its last segment.
func (p *parser835) parsePayer(payer *Payer, segs []Segment, i int) int {
	payer.Name = segs[i].Element(2)
	payer.PayerID = segs[i].Element(4)

	for i+1 < len(segs) && isIdentityChild(segs[i+1].ID) {
		i++
		seg := segs[i]
		switch seg.ID {
		case "N3":
			payer.Address1 = seg.Element(1)
			payer.Address2 = seg.Element(2)
		case "N4":
			payer.City = seg.Element(1)
			payer.State = seg.Element(2)
			payer.Zip = seg.Element(3)
		case "PER":
			payer.ContactName = seg.Element(2)
			for j := 3; j <= 7; j += 2 {
				if seg.Element(j) == "TE" {
					payer.ContactPhone = seg.Element(j + 1)
				}
			}
		case "REF":
			payer.References = append(payer.References, Reference{
				Qualifier: seg.Element(1),
				Value:     seg.Element(2),
			})
		}
	}
	return i
}

// payeeIDSetters dispatches the N1*PE and nested REF identifier qualifiers
// to the named payee fields; unlisted REF qualifiers accumulate.
var payeeIDSetters = map[string]func(*Payee, string){
	"XX": func(p *Payee, v string) { p.NPI = v },
	"PQ": func(p *Payee, v string) { p.NPI = v },
	"FI": func(p *Payee, v string) { p.TaxID = v },
	"TJ": func(p *Payee, v string) { p.TaxID = v },
}

// parsePayee consumes the N1*PE loop starting at index i and returns the
// index of its last segment.
func (p *parser835) parsePayee(payee *Payee, segs []Segment, i int) int {
	payee.Name = segs[i].Element(2)
	if set, ok := payeeIDSetters[segs[i].Element(3)]; ok {
		set(payee, segs[i].Element(4))
	}

	for i+1 < len(segs) && isIdentityChild(segs[i+1].ID) {
		i++
		seg := segs[i]
		switch seg.ID {
		case "N3":
			payee.Address1 = seg.Element(1)
		case "N4":
			payee.City = seg.Element(1)
			payee.State = seg.Element(2)
			payee.Zip = seg.Element(3)
		case "REF":
			if set, ok := payeeIDSetters[seg.Element(1)]; ok {
				set(payee, seg.Element(2))
			} else {
				payee.References = append(payee.References, Reference{
					Qualifier: seg.Element(1),
					Value:     seg.Element(2),
				})
			}
		}
	}
	return i
}

// claimPartyTargets dispatches NM1 entity qualifiers to the named-party
// fields of a claim payment.
var claimPartyTargets = map[string]func(*ClaimPayment, *NamedParty){
	"QC": func(c *ClaimPayment, p *NamedParty) { c.Patient = p },
	"IL": func(c *ClaimPayment, p *NamedParty) { c.Insured = p },
	"74": func(c *ClaimPayment, p *NamedParty) { c.CorrectedPatient = p },
	"82": func(c *ClaimPayment, p *NamedParty) { c.Rendering = p },
	"TT": func(c *ClaimPayment, p *NamedParty) { c.CrossoverCarrier = p },
}

// claimRefSetters dispatches claim-level REF qualifiers to named fields;
// any other qualifier accumulates into the generic reference list.
var claimRefSetters = map[string]func(*ClaimPayment, string){
	"F8":  func(c *ClaimPayment, v string) { c.OriginalReference = v },
	"1K":  func(c *ClaimPayment, v string) { c.PolicyNumber = v },
	"BLT": func(c *ClaimPayment, v string) { c.BillType = v },
	"EA":  func(c *ClaimPayment, v string) { c.MedicalRecordID = v },
}

// parseClaim builds one claim payment from its segment extent: the CLP
// segment, claim-level segments up to the first SVC, then SVC-bracketed
// service lines.
func (p *parser835) parseClaim(segs []Segment, offset int) ClaimPayment {
	clp := segs[0]
	claim := ClaimPayment{
		PatientControlNumber:  clp.Element(1),
		StatusCode:            clp.Element(2),
		ChargeAmount:          ParseAmount(clp.Element(3)),
		PaidAmount:            ParseAmount(clp.Element(4)),
		PatientResponsibility: ParseAmount(clp.Element(5)),
		ClaimFilingCode:       clp.Element(6),
		PayerControlNumber:    clp.Element(7),
		FacilityCode:          clp.Element(8),
		FrequencyCode:         clp.Element(9),
	}

	svcStart := len(segs)
	for i := 1; i < len(segs); i++ {
		if segs[i].ID == "SVC" {
			svcStart = i
			break
		}
	}

	for i := 1; i < svcStart; i++ {
		seg := segs[i]
		switch seg.ID {
		case "CAS":
			claim.Adjustments = append(claim.Adjustments, p.parseCAS(seg))
		case "NM1":
			if target, ok := claimPartyTargets[seg.Element(1)]; ok {
				target(&claim, &NamedParty{
					LastName:    seg.Element(3),
					FirstName:   seg.Element(4),
					MiddleName:  seg.Element(5),
					IDQualifier: seg.Element(8),
					ID:          seg.Element(9),
				})
			}
		case "MIA":
			claim.Inpatient = &InpatientAdjudication{
				CoveredDays:        ParseAmount(seg.Element(1)),
				ClaimPayableAmount: ParseAmount(seg.Element(4)),
				RemarkCodes:        nonEmpty(seg.Element(5), seg.Element(20), seg.Element(21), seg.Element(22), seg.Element(23)),
			}
		case "MOA":
			claim.Outpatient = &OutpatientAdjudication{
				ReimbursementRate:  ParseAmount(seg.Element(1)),
				ClaimPayableAmount: ParseAmount(seg.Element(2)),
				RemarkCodes:        nonEmpty(seg.Element(3), seg.Element(4), seg.Element(5), seg.Element(6), seg.Element(7)),
			}
		case "DTM":
			p.applyClaimDate(&claim, seg, offset+i)
		case "REF":
			if set, ok := claimRefSetters[seg.Element(1)]; ok {
				set(&claim, seg.Element(2))
			} else {
				claim.References = append(claim.References, Reference{
					Qualifier: seg.Element(1),
					Value:     seg.Element(2),
				})
			}
		case "AMT":
			claim.Amounts = append(claim.Amounts, SupplementalAmount{
				Qualifier: seg.Element(1),
				Amount:    ParseAmount(seg.Element(2)),
			})
		}
	}

	for i := svcStart; i < len(segs); i++ {
		if segs[i].ID != "SVC" {
			continue
		}
		end := i + 1
		for end < len(segs) && segs[end].ID != "SVC" {
			end++
		}
		claim.ServiceLines = append(claim.ServiceLines, p.parseServiceLine(segs[i:end], offset+i))
		i = end - 1
	}

	return claim
}

// parseServiceLine builds one loop 2110 record from an SVC segment and its
// children.
func (p *parser835) parseServiceLine(segs []Segment, offset int) ServiceLinePayment {
	svc := segs[0]
	line := ServiceLinePayment{
		Procedure:    p.parseProcedure(svc.Element(1)),
		ChargeAmount: ParseAmount(svc.Element(2)),
		PaidAmount:   ParseAmount(svc.Element(3)),
		RevenueCode:  svc.Element(4),
		Units:        ParseAmount(svc.Element(5)),
	}
	if svc.Element(6) != "" {
		corrected := p.parseProcedure(svc.Element(6))
		line.CorrectedProcedure = &corrected
	}

	for i := 1; i < len(segs); i++ {
		seg := segs[i]
		switch seg.ID {
		case "CAS":
			line.Adjustments = append(line.Adjustments, p.parseCAS(seg))
		case "DTM":
			if seg.Element(1) == "472" {
				start, end := p.parseDateValue(seg, offset+i)
				line.ServiceDateStart = start
				if end != "" {
					line.ServiceDateEnd = end
				}
			}
		case "REF":
			line.References = append(line.References, Reference{
				Qualifier: seg.Element(1),
				Value:     seg.Element(2),
			})
		case "AMT":
			amount := SupplementalAmount{
				Qualifier: seg.Element(1),
				Amount:    ParseAmount(seg.Element(2)),
			}
			line.Amounts = append(line.Amounts, amount)
			if amount.Qualifier == "B6" {
				line.AllowedAmount = amount.Amount
			}
		case "LQ":
			if code := seg.Element(2); code != "" {
				line.RemarkCodes = append(line.RemarkCodes, code)
			}
		}
	}
	return line
}

// parseProcedure decomposes a qualifier:code:mod1..mod4 composite.
func (p *parser835) parseProcedure(composite string) Procedure {
	parts := p.components(composite)
	proc := Procedure{Qualifier: parts[0]}
	if len(parts) > 1 {
		proc.Code = parts[1]
	}
	for _, mod := range parts[2:] {
		if mod != "" {
			proc.Modifiers = append(proc.Modifiers, mod)
		}
	}
	return proc
}

// parseCAS decomposes a claim adjustment segment: the group code followed by
// up to six (reason, amount, quantity) triples. An empty reason code ends
// the decomposition.
func (p *parser835) parseCAS(seg Segment) Adjustment {
	adj := Adjustment{GroupCode: seg.Element(1)}
	for i := 2; i <= 17; i += 3 {
		reason := seg.Element(i)
		if reason == "" {
			break
		}
		adj.Details = append(adj.Details, AdjustmentDetail{
			ReasonCode: reason,
			Amount:     ParseAmount(seg.Element(i + 1)),
			Quantity:   ParseAmount(seg.Element(i + 2)),
		})
	}
	return adj
}

// parsePLB decomposes a provider-level balance segment: provider identifier,
// fiscal period date, then up to six reason/amount pairs at fixed offsets.
// Each reason element is a code[:referenceId] composite.
func (p *parser835) parsePLB(seg Segment) ProviderAdjustment {
	plb := ProviderAdjustment{
		ProviderID:      seg.Element(1),
		FiscalPeriodEnd: seg.Element(2),
	}
	for i := 3; i <= 13; i += 2 {
		reason := seg.Element(i)
		if reason == "" {
			continue
		}
		parts := p.components(reason)
		detail := ProviderAdjustmentDetail{
			ReasonCode: parts[0],
			Amount:     ParseAmount(seg.Element(i + 1)),
		}
		if len(parts) > 1 {
			detail.ReferenceID = parts[1]
		}
		plb.Adjustments = append(plb.Adjustments, detail)
	}
	return plb
}

// applyClaimDate handles the DTM*232/233 statement date segments, which may
// carry a single date or a start-end range.
func (p *parser835) applyClaimDate(claim *ClaimPayment, seg Segment, pos int) {
	switch seg.Element(1) {
	case "232":
		start, end := p.parseDateValue(seg, pos)
		claim.StatementStart = start
		if end != "" {
			claim.StatementEnd = end
		}
	case "233":
		start, end := p.parseDateValue(seg, pos)
		if end != "" {
			claim.StatementStart = start
			claim.StatementEnd = end
		} else {
			claim.StatementEnd = start
		}
	}
}

// parseDateValue reads a DTM date that may be a single CCYYMMDD value or a
// CCYYMMDD-CCYYMMDD range. The date-format qualifier is honored when
// present; a value whose shape disagrees with its declared format yields a
// warning and the raw value is kept unsplit.
func (p *parser835) parseDateValue(seg Segment, pos int) (start, end string) {
	value := seg.Element(2)
	format := seg.Element(5)
	if format == "RD8" && seg.Element(6) != "" {
		value = seg.Element(6)
	}

	hyphen := strings.Index(value, "-")
	switch {
	case format == "RD8" && hyphen < 0:
		p.diags = append(p.diags, warnDiag(seg.ID, pos,
			"date %q declares range format RD8 but has no range separator", value))
		return value, ""
	case format != "RD8" && hyphen >= 0 && format != "":
		p.diags = append(p.diags, warnDiag(seg.ID, pos,
			"date %q contains a range separator but declares format %s; keeping raw value", value, format))
		return value, ""
	case hyphen >= 0:
		return value[:hyphen], value[hyphen+1:]
	default:
		return value, ""
	}
}

// nonEmpty filters empty strings from a fixed candidate list.
func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
