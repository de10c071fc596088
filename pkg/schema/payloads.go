package schema

import "github.com/Ramsey-B/fern/pkg/models"

// Built-in schemas, one per submission type. Contact fields are deliberately
// optional on intake and packet: a submission with no resolvable contact is
// still persisted and recovered later by the reconciliation sweep.
var typeValidators = map[models.SubmissionType]*Validator{
	models.SubmissionIntake: NewValidator(PayloadSchema{
		Properties: map[string]PropertyDefinition{
			"firstName":             {Type: "string"},
			"lastName":              {Type: "string"},
			"email":                 {Type: "string", Format: "email"},
			"phone":                 {Type: "string", Format: "phone"},
			"businessName":          {Type: "string"},
			"ein":                   {Type: "string", Format: "digits"},
			"address":               {Type: "string"},
			"city":                  {Type: "string"},
			"state":                 {Type: "string"},
			"zip":                   {Type: "string"},
			"npn":                   {Type: "string", Format: "digits"},
			"residentState":         {Type: "string"},
			"licensedStates":        {Type: "multi"},
			"felony":                {Type: "boolish"},
			"bankruptcy":            {Type: "boolish"},
			"licenseRevoked":        {Type: "boolish"},
			"eoClaim":               {Type: "boolish"},
			"backgroundExplanation": {Type: "string"},
			"signatureText":         {Type: "string"},
		},
	}),
	models.SubmissionW9: NewValidator(PayloadSchema{
		Required: []string{"legalName", "tin"},
		Properties: map[string]PropertyDefinition{
			"legalName":         {Type: "string"},
			"businessName":      {Type: "string"},
			"taxClassification": {Type: "string"},
			"tin":               {Type: "string", Format: "digits"},
			"exemptPayeeCode":   {Type: "string"},
			"address":           {Type: "string"},
			"city":              {Type: "string"},
			"state":             {Type: "string"},
			"zip":               {Type: "string"},
			"email":             {Type: "string", Format: "email"},
			"firstName":         {Type: "string"},
			"lastName":          {Type: "string"},
			"certified":         {Type: "boolish"},
			"signatureText":     {Type: "string"},
		},
	}),
	models.SubmissionBanking: NewValidator(PayloadSchema{
		Required: []string{"routingNumber", "accountNumber"},
		Properties: map[string]PropertyDefinition{
			"bankName":               {Type: "string"},
			"routingNumber":          {Type: "string", Format: "digits"},
			"accountNumber":          {Type: "string", Format: "digits"},
			"accountType":            {Type: "string"},
			"authorizeDirectDeposit": {Type: "boolish"},
			"email":                  {Type: "string", Format: "email"},
			"firstName":              {Type: "string"},
			"lastName":               {Type: "string"},
			"signatureText":          {Type: "string"},
		},
	}),
	// The packet form covers every section at once, so its schema is the
	// union of the others with nothing required up front.
	models.SubmissionPacket: NewValidator(PayloadSchema{
		Properties: map[string]PropertyDefinition{
			"firstName":               {Type: "string"},
			"lastName":                {Type: "string"},
			"email":                   {Type: "string", Format: "email"},
			"phone":                   {Type: "string", Format: "phone"},
			"businessName":            {Type: "string"},
			"ein":                     {Type: "string", Format: "digits"},
			"address":                 {Type: "string"},
			"city":                    {Type: "string"},
			"state":                   {Type: "string"},
			"zip":                     {Type: "string"},
			"npn":                     {Type: "string", Format: "digits"},
			"residentState":           {Type: "string"},
			"licensedStates":          {Type: "multi"},
			"felony":                  {Type: "boolish"},
			"bankruptcy":              {Type: "boolish"},
			"licenseRevoked":          {Type: "boolish"},
			"eoClaim":                 {Type: "boolish"},
			"backgroundExplanation":   {Type: "string"},
			"legalName":               {Type: "string"},
			"taxClassification":       {Type: "string"},
			"tin":                     {Type: "string", Format: "digits"},
			"exemptPayeeCode":         {Type: "string"},
			"certified":               {Type: "boolish"},
			"bankName":                {Type: "string"},
			"routingNumber":           {Type: "string", Format: "digits"},
			"accountNumber":           {Type: "string", Format: "digits"},
			"accountType":             {Type: "string"},
			"authorizeDirectDeposit":  {Type: "boolish"},
			"acceptProducerAgreement": {Type: "boolish"},
			"signatureText":           {Type: "string"},
		},
	}),
}
