package sqlinline

const QStatsSummary = `--sql 5c5e9cfd-15f7-43ec-88c1-63943f71e7f4
select
    (select count(*) from users) as total_users,
    (select count(*) from users where is_premium) as premium_users,
    (select count(*) from stories) as total_stories,
    (select coalesce(sum(stories_created), 0) from analytics_daily) as stories_created,
    (select coalesce(sum(stories_failed), 0) from analytics_daily) as stories_failed,
    (select coalesce(sum(quota_denials), 0) from analytics_daily) as quota_denials,
    (select count(*) from stories where created_at > now() - interval '24 hours') as stories_last_24h;
`
