package learning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/certificate"
)

const certificateIssuedTmpl = "certificate_issued"

func (svc *Service) notifyCertificateIssued(cert certificate.Certificate, learner Learner) {
	if !svc.conf.Certificates.Notify || learner.Email == "" {
		return
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: learner.Name, Address: learner.Email}},
		Subject:      fmt.Sprintf("Your certificate for %s", cert.CourseTitle),
		TemplateName: certificateIssuedTmpl,
		TemplateData: map[string]interface{}{
			"StudentName": learner.Name,
			"CourseID":    cert.CourseID,
			"CourseTitle": cert.CourseTitle,
			"IssuerName":  cert.IssuerName,
			"IssuedAt":    cert.IssuedAt.Format("January 2, 2006"),
		},
	}

	content, err := json.MarshalIndent(cert, "", "  ")
	if err != nil {
		svc.logger.Error("encoding certificate", errors.Wrap(err, "encoding certificate"))
		return
	}
	if err = msg.Attach(bytes.NewReader(content), "certificate-"+cert.CourseID+".json", "application/json"); err != nil {
		svc.logger.Error("attaching certificate", errors.Wrap(err, "attaching certificate"))
		return
	}

	svc.mailSvc.SendMessages(msg)
}
