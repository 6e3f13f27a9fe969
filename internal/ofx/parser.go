// Package ofx imports bank and credit card statements (OFX/QFX) as
// transactions with source Bank.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/model"
)

// importNamespace derives stable transaction ids from account and FITID, so
// importing the same statement twice yields the same ids.
var importNamespace = uuid.MustParse("6f0f3c52-8a7e-4c43-9a6c-3b8f0a1d2e41")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is one account's worth of imported transactions.
type Statement struct {
	AccountID    string
	Currency     string
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: common.LoggerOrDefault(logger)}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns every transaction in it.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	stmts, err := p.ParseStatements(ctx, reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, s := range stmts {
		transactions = append(transactions, s.Transactions...)
	}
	return transactions, nil
}

// ParseStatements parses an OFX/QFX file into per-account statements.
func (p *Parser) ParseStatements(ctx context.Context, reader io.Reader) ([]Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var stmts []Statement
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			stmts = append(stmts, p.convertStatement(string(stmt.BankAcctFrom.AcctID), stmt.CurDef, stmt.BankTranList))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			stmts = append(stmts, p.convertStatement(string(stmt.CCAcctFrom.AcctID), stmt.CurDef, stmt.BankTranList))
		}
	}

	total := 0
	for _, s := range stmts {
		total += len(s.Transactions)
	}
	p.logger.Info("Parsed OFX file",
		"statements", len(stmts),
		"total_transactions", total)

	return stmts, nil
}

func (p *Parser) convertStatement(accountID string, curDef ofxgo.CurrSymbol, list *ofxgo.TransactionList) Statement {
	code := currency.Normalize(curDef.String()).String()
	stmt := Statement{AccountID: accountID, Currency: code}
	if list == nil {
		return stmt
	}
	for _, ofxTx := range list.Transactions {
		stmt.Transactions = append(stmt.Transactions, p.convertTransaction(ofxTx, accountID, code))
	}
	return stmt
}

// convertTransaction maps an OFX transaction onto a Bank transaction. OFX
// uses negative amounts for debits.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID, code string) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	txnType := model.TypeIncome
	if amount < 0 {
		amount = -amount
		txnType = model.TypeExpense
	}

	category := model.GeneralCategory
	switch ofxTx.TrnType.String() {
	case "INT", "DIV":
		category = "Interest"
	case "FEE", "SRVCHG":
		category = "Bank Fees"
	case "ATM":
		category = "Cash & ATM"
	}

	return model.Transaction{
		ID:               uuid.NewSHA1(importNamespace, []byte(accountID+"/"+string(ofxTx.FiTID))).String(),
		Date:             model.NewDate(ofxTx.DtPosted.Time),
		Description:      p.extractMerchantName(ofxTx),
		Amount:           amount,
		OriginalCurrency: code,
		Category:         category,
		Type:             txnType,
		Source:           model.SourceBank,
		Status:           model.StatusPaid,
		Classification:   model.ClassificationBusiness,
	}
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
